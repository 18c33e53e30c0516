package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"salon_staff_id",
			"service_id",
			"start_at",
			"end_at",
			"payment_type",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"salon_staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"note": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"start_at": bson.M{
				"bsonType": "date",
			},

			"end_at": bson.M{
				"bsonType": "date",
			},

			"payment_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"cash", "card", "online"},
			},

			"amount": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"is_paid": bson.M{
				"bsonType": "bool",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"upcoming", "in_progress", "completed", "cancelled"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
