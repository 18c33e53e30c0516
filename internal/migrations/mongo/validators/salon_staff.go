package validators

import "go.mongodb.org/mongo-driver/bson"

var SalonStaffValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"role": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"salon_id": bson.M{
				"bsonType":  "string",
				"maxLength": 64,
			},

			"salon_name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
