// Package identity canonicalizes the ways bookmarks and locations are referenced:
// store-assigned ObjectID hex strings, external place ids, and the legacy
// "place-" prefixed form.
package identity

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind tells which namespace a reference value lives in.
type Kind int

const (
	StoreID Kind = iota + 1
	ExternalID
)

const placePrefix = "place-"

func (k Kind) String() string {
	switch k {
	case StoreID:
		return "store"
	case ExternalID:
		return "external"
	default:
		return "unknown"
	}
}

// Reference is a normalized bookmark or location reference.
type Reference struct {
	Kind  Kind
	Value string
}

// Parse normalizes raw. It never fails: anything that is not a 24 character hex
// id is an external place id, with a leading "place-" stripped.
func Parse(raw string) Reference {
	raw = strings.TrimSpace(raw)
	if isObjectIDHex(raw) {
		return Reference{Kind: StoreID, Value: strings.ToLower(raw)}
	}
	if strings.HasPrefix(raw, placePrefix) {
		return Reference{Kind: ExternalID, Value: strings.TrimPrefix(raw, placePrefix)}
	}
	return Reference{Kind: ExternalID, Value: raw}
}

// Equal reports whether two references name the same thing.
func (r Reference) Equal(other Reference) bool {
	return r.Kind == other.Kind && r.Value == other.Value
}

// ObjectID converts a StoreID reference. ok is false for external references.
func (r Reference) ObjectID() (primitive.ObjectID, bool) {
	if r.Kind != StoreID {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(r.Value)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func (r Reference) String() string {
	return r.Kind.String() + ":" + r.Value
}

// Equivalent reports whether two raw strings normalize to the same reference.
func Equivalent(a, b string) bool {
	return Parse(a).Equal(Parse(b))
}

// Matching returns the entries of refs that are equivalent to target, as stored.
func Matching(refs []string, target string) []string {
	want := Parse(target)
	var out []string
	for _, ref := range refs {
		if Parse(ref).Equal(want) {
			out = append(out, ref)
		}
	}
	return out
}

// Contains reports whether any entry of refs is equivalent to target.
func Contains(refs []string, target string) bool {
	return len(Matching(refs, target)) > 0
}

// LocationKey coerces a location id the same way on every read and write path:
// digit-only strings and whole numbers become int64, anything else stays a string.
// ok is false for empty or unsupported input.
func LocationKey(raw interface{}) (key interface{}, ok bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, false
		}
		if isDigits(s) {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, true
			}
		}
		return s, true
	case float64:
		if v != float64(int64(v)) {
			return nil, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return nil, false
	}
}

func isObjectIDHex(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
