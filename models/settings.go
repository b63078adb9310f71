package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// KeepaliveSetting is the group setting holding the default idle timeout in seconds.
const KeepaliveSetting = "keepalive_expiration"

// Setting represents a group scoped configuration value.
type Setting struct {
	GroupID        string       `json:"group_id"`
	GroupSettingID string       `json:"group_setting_id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Value          SettingValue `json:"value"`
}

// SettingValue holds either a string or an integer and keeps the kind it
// was decoded with when encoded again.
type SettingValue struct {
	str   string
	num   int64
	isInt bool
}

func StringValue(s string) SettingValue {
	return SettingValue{str: s}
}

func IntValue(n int64) SettingValue {
	return SettingValue{num: n, isInt: true}
}

// IsInt reports whether the value was set or decoded as an integer.
func (v SettingValue) IsInt() bool {
	return v.isInt
}

// Int returns the value as an integer. String values are parsed.
func (v SettingValue) Int() (int64, error) {
	if v.isInt {
		return v.num, nil
	}
	n, err := strconv.ParseInt(v.str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("setting value %q is not an integer: %w", v.str, err)
	}
	return n, nil
}

func (v SettingValue) String() string {
	if v.isInt {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

func (v SettingValue) MarshalJSON() ([]byte, error) {
	if v.isInt {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

func (v *SettingValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = SettingValue{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("setting value must be a string or an integer: %w", err)
	}
	*v = IntValue(n)
	return nil
}
