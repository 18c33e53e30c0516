package validators

import "go.mongodb.org/mongo-driver/bson"

var StaffAvailabilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"salon_staff_id",
			"day_of_week",
			"start_time",
			"end_time",
			"is_available",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"salon_staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"day_of_week": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  6,
			},

			// Zero-padded HH:MM so string range queries follow clock order
			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([0-1][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([0-1][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"is_available": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
