package custom

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Datetime represents a UTC datetime. It is stored as a native BSON datetime and rendered as RFC3339 in JSON.
type Datetime time.Time

// Now returns the current time as a Datetime.
func Now() Datetime {
	return Datetime(time.Now().UTC())
}

// IsZero reports whether the datetime is unset.
func (d Datetime) IsZero() bool {
	return time.Time(d).IsZero()
}

// MarshalJSON implements the json.Marshaler interface.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`%q`, time.Time(d).UTC().Format(time.RFC3339))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Datetime) UnmarshalJSON(text []byte) error {
	s := strings.Trim(string(text), `"`)
	if s == "" || s == "null" {
		*d = Datetime{}
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid datetime: %w", err)
	}
	*d = Datetime(t.UTC())
	return nil
}

// MarshalBSONValue implements the bson.ValueMarshaler interface.
func (d Datetime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(primitive.NewDateTimeFromTime(time.Time(d).UTC()))
}

// UnmarshalBSONValue implements the bson.ValueUnmarshaler interface.
func (d *Datetime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*d = Datetime{}
		return nil
	case bson.TypeDateTime:
		var dt primitive.DateTime
		if err := bson.UnmarshalValue(t, data, &dt); err != nil {
			return fmt.Errorf("invalid datetime: %w", err)
		}
		*d = Datetime(dt.Time().UTC())
		return nil
	case bson.TypeString:
		// Older documents stored the RFC3339 string.
		var s string
		if err := bson.UnmarshalValue(t, data, &s); err != nil {
			return fmt.Errorf("invalid datetime: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid datetime: %w", err)
		}
		*d = Datetime(parsed.UTC())
		return nil
	default:
		return fmt.Errorf("invalid datetime, bson type %s not supported", t)
	}
}

// String implements the fmt.Stringer interface.
func (d Datetime) String() string {
	return time.Time(d).UTC().Format(time.RFC3339)
}
