package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Tag 飲食標籤名稱
type Tag string

const (
	TagVegetarian Tag = "isVegetarian"
	TagVegan      Tag = "isVegan"
	TagGlutenFree Tag = "isGlutenFree"
)

// ErrUnknownTag 未知的標籤名稱
var ErrUnknownTag = errors.New("recipe: unknown tag")

// Tags 所有標籤，依固定順序
var Tags = []Tag{TagVegetarian, TagVegan, TagGlutenFree}

// ParseTag 解析標籤名稱
func ParseTag(name string) (Tag, error) {
	for _, t := range Tags {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTag, name)
}

// TagOverride 單一標籤的覆寫狀態：未設定時沿用推導值
type TagOverride struct {
	Set   bool
	Value bool
}

// Overridden 建立已設定的覆寫
func Overridden(v bool) TagOverride {
	return TagOverride{Set: true, Value: v}
}

// Resolve 有覆寫時回傳覆寫值，否則回傳推導值
func (o TagOverride) Resolve(derived bool) bool {
	if o.Set {
		return o.Value
	}
	return derived
}

// UserOverride 使用者對三個標籤的覆寫
type UserOverride struct {
	IsVegetarian TagOverride
	IsVegan      TagOverride
	IsGlutenFree TagOverride
}

// Get 取得指定標籤的覆寫；未知標籤視為未設定
func (u UserOverride) Get(tag Tag) TagOverride {
	switch tag {
	case TagVegetarian:
		return u.IsVegetarian
	case TagVegan:
		return u.IsVegan
	case TagGlutenFree:
		return u.IsGlutenFree
	}
	return TagOverride{}
}

func (u *UserOverride) field(tag Tag) *TagOverride {
	switch tag {
	case TagVegetarian:
		return &u.IsVegetarian
	case TagVegan:
		return &u.IsVegan
	case TagGlutenFree:
		return &u.IsGlutenFree
	}
	return nil
}

// Set 設定指定標籤的覆寫值
func (u *UserOverride) Set(tag Tag, v bool) error {
	f := u.field(tag)
	if f == nil {
		return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	*f = Overridden(v)
	return nil
}

// Merge 逐欄合併：partial 有設定的欄位覆蓋，其餘保留原值
func (u UserOverride) Merge(partial UserOverride) UserOverride {
	out := u
	for _, tag := range Tags {
		if p := partial.Get(tag); p.Set {
			*out.field(tag) = p
		}
	}
	return out
}

// IsEmpty 是否沒有任何覆寫
func (u UserOverride) IsEmpty() bool {
	return !u.IsVegetarian.Set && !u.IsVegan.Set && !u.IsGlutenFree.Set
}

// MarshalJSON 只輸出已設定的欄位
func (u UserOverride) MarshalJSON() ([]byte, error) {
	out := make(map[string]bool, len(Tags))
	for _, tag := range Tags {
		if o := u.Get(tag); o.Set {
			out[string(tag)] = o.Value
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON null 值視為未設定，字串與數字轉為布林；未知欄位回傳 ErrUnknownTag
func (u *UserOverride) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid override: %w", err)
	}

	next := UserOverride{}
	for name, v := range raw {
		tag, err := ParseTag(name)
		if err != nil {
			return err
		}
		b, ok, err := coerceBool(v)
		if err != nil {
			return fmt.Errorf("invalid override %s: %w", name, err)
		}
		if ok {
			*next.field(tag) = Overridden(b)
		}
	}
	*u = next
	return nil
}

// coerceBool 接受 true/false、數字（非零為真）與 strconv.ParseBool 可解析的字串
func coerceBool(v json.RawMessage) (bool, bool, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return false, false, nil
	}
	switch v[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return false, false, err
		}
		return b, true, nil
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return false, false, err
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, false, fmt.Errorf("not a boolean: %q", s)
		}
		return b, true, nil
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return false, false, fmt.Errorf("not a boolean: %s", v)
	}
	return n != 0, true, nil
}
