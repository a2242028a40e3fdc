package schema

import "github.com/hamba/avro/v2"

const ChangeEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "inventory",
	"name": "change_event",
	"fields": [
		{"name": "event_name", "type": "string"},
		{"name": "new_image", "type": {
			"type": "map",
			"values": {
				"type": "record",
				"name": "attr",
				"fields": [
					{"name": "kind", "type": "string"},
					{"name": "value", "type": "string"}
				]
			}
		}},
		{"name": "old_image", "type": {"type": "map", "values": "attr"}}
	]
}`

const SnapshotSchemaTextV1 = `{
	"type": "record",
	"namespace": "inventory",
	"name": "product_snapshot",
	"fields": [
		{"name": "product_id", "type": "string"},
		{"name": "product_name", "type": "string"},
		{"name": "product_category", "type": "string"},
		{"name": "stock_count", "type": "long"}
	]
}`

const AlertSchemaTextV1 = `{
	"type": "record",
	"namespace": "inventory",
	"name": "alert",
	"fields": [
		{"name": "message_id", "type": "string"},
		{"name": "subject", "type": "string"},
		{"name": "message", "type": "string"}
	]
}`

type (
	// An AttrV1 is one typed scalar attribute of an event image.
	// Kind is "S" for strings and "N" for numbers carried as text.
	AttrV1 struct {
		Kind  string `avro:"kind"`
		Value string `avro:"value"`
	}

	// A ChangeEventV1 is one inventory mutation on the wire.
	// An empty old image means the event has no prior state.
	ChangeEventV1 struct {
		EventName string            `avro:"event_name"`
		NewImage  map[string]AttrV1 `avro:"new_image"`
		OldImage  map[string]AttrV1 `avro:"old_image"`
	}

	// A SnapshotV1 is the latest known product state kept in the
	// snapshot group table.
	SnapshotV1 struct {
		ProductID  string `avro:"product_id"`
		Name       string `avro:"product_name"`
		Category   string `avro:"product_category"`
		StockCount int    `avro:"stock_count"`
	}

	// An AlertV1 is one rendered notification on the wire.
	AlertV1 struct {
		MessageID string `avro:"message_id"`
		Subject   string `avro:"subject"`
		Message   string `avro:"message"`
	}
)

func ChangeEventV1Avro() avro.Schema {
	return avro.MustParse(ChangeEventSchemaTextV1)
}

func SnapshotV1Avro() avro.Schema {
	return avro.MustParse(SnapshotSchemaTextV1)
}

func AlertV1Avro() avro.Schema {
	return avro.MustParse(AlertSchemaTextV1)
}
