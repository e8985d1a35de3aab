package neows

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FeedPayload is the decoded body of a /feed response.
type FeedPayload struct {
	ElementCount     int                          `json:"element_count"`
	Links            map[string]string            `json:"links"`
	NearEarthObjects map[string][]NearEarthObject `json:"near_earth_objects"`
}

// NearEarthObject is one object entry under a date key.
type NearEarthObject struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	NASAJPLURL        string          `json:"nasa_jpl_url"`
	Hazardous         bool            `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData []CloseApproach `json:"close_approach_data"`

	// Malformed marks an entry that was not a JSON object at all.
	Malformed bool `json:"-"`
}

// UnmarshalJSON decodes the entry field by field. A field of an unexpected
// type is left zero, so one odd entry never fails the whole feed.
func (o *NearEarthObject) UnmarshalJSON(data []byte) error {
	*o = NearEarthObject{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		o.Malformed = true
		return nil
	}

	o.ID = looseString(fields["id"])
	o.Name = looseString(fields["name"])
	o.NASAJPLURL = looseString(fields["nasa_jpl_url"])
	_ = json.Unmarshal(fields["is_potentially_hazardous_asteroid"], &o.Hazardous)

	var approaches []json.RawMessage
	if err := json.Unmarshal(fields["close_approach_data"], &approaches); err != nil {
		return nil
	}
	for _, raw := range approaches {
		var ca CloseApproach
		_ = json.Unmarshal(raw, &ca)
		o.CloseApproachData = append(o.CloseApproachData, ca)
	}
	return nil
}

// CloseApproach is one recorded pass of an object near a body.
type CloseApproach struct {
	Date             string           `json:"close_approach_date"`
	DateFull         string           `json:"close_approach_date_full"`
	EpochMillis      int64            `json:"epoch_date_close_approach"`
	OrbitingBody     string           `json:"orbiting_body"`
	RelativeVelocity RelativeVelocity `json:"relative_velocity"`
	MissDistance     MissDistance     `json:"miss_distance"`
}

// UnmarshalJSON decodes leniently; see NearEarthObject.UnmarshalJSON.
func (c *CloseApproach) UnmarshalJSON(data []byte) error {
	*c = CloseApproach{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	c.Date = looseString(fields["close_approach_date"])
	c.DateFull = looseString(fields["close_approach_date_full"])
	c.OrbitingBody = looseString(fields["orbiting_body"])

	var epoch Number
	_ = epoch.UnmarshalJSON(fields["epoch_date_close_approach"])
	if epoch.Finite() {
		c.EpochMillis = int64(epoch.Float())
	}

	if err := json.Unmarshal(fields["relative_velocity"], &c.RelativeVelocity); err != nil {
		c.RelativeVelocity = RelativeVelocity{}
	}
	if err := json.Unmarshal(fields["miss_distance"], &c.MissDistance); err != nil {
		c.MissDistance = MissDistance{}
	}
	return nil
}

// looseString reads a JSON string, or the literal text of a number.
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// RelativeVelocity carries speed in the units the feed publishes.
type RelativeVelocity struct {
	KilometersPerSecond Number `json:"kilometers_per_second"`
	KilometersPerHour   Number `json:"kilometers_per_hour"`
}

// MissDistance carries the closest-approach distance in several units.
type MissDistance struct {
	Astronomical Number `json:"astronomical"`
	Lunar        Number `json:"lunar"`
	Kilometers   Number `json:"kilometers"`
}

// Number accepts a JSON number or a numeric string. Decoding never fails;
// absent or unparseable values yield a non-finite Float.
type Number struct {
	raw   string
	value float64
	set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = s
	}
	n.raw = raw

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	n.value = v
	n.set = true
	return nil
}

// MarshalJSON writes the value back as the string the feed uses.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set && n.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

// Float returns the parsed value, or NaN when absent or unparseable.
func (n Number) Float() float64 {
	if !n.set {
		return math.NaN()
	}
	return n.value
}

// Finite reports whether the value parsed to a finite float.
func (n Number) Finite() bool {
	v := n.Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NumberOf builds a Number from a float, mainly for fixtures.
func NumberOf(v float64) Number {
	return Number{raw: strconv.FormatFloat(v, 'f', -1, 64), value: v, set: true}
}
