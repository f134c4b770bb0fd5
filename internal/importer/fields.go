package importer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/justsurfingit/career-tracker/internal/models"
)

// aliases maps each canonical contact field to the normalized spellings it
// accepts. Normalization lowercases and strips spaces, '_', '-' and '.'.
var aliases = map[string][]string{
	"first_name":         {"firstname", "first", "givenname", "forename"},
	"last_name":          {"lastname", "last", "surname", "familyname"},
	"full_name":          {"name", "fullname", "contactname", "displayname"},
	"email":              {"email", "emailaddress", "mail", "email1", "primaryemail"},
	"phone":              {"phone", "phonenumber", "mobile", "mobilephone", "tel", "telephone", "phone1"},
	"company":            {"company", "companyname", "organization", "organisation", "employer", "org"},
	"title":              {"title", "jobtitle", "position", "role"},
	"linkedin_url":       {"linkedin", "linkedinurl", "linkedinprofile", "profileurl", "url"},
	"relationship_type":  {"relationshiptype", "relationship", "type", "connectiontype"},
	"strength":           {"relationshipstrength", "strength"},
	"industry":           {"industry", "sector"},
	"category":           {"category", "group"},
	"notes":              {"notes", "note", "comments", "comment"},
	"tags":               {"tags", "tag", "labels", "label"},
	"mutual_connections": {"mutualconnections", "mutuals", "sharedconnections"},
}

var byAlias = func() map[string]string {
	m := map[string]string{}
	for canonical, names := range aliases {
		for _, n := range names {
			m[n] = canonical
		}
	}
	return m
}()

var keyNoise = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")

func normalizeKey(k string) string {
	return keyNoise.Replace(strings.ToLower(strings.TrimSpace(k)))
}

// Canonical rewrites a record to canonical field names, dropping unknown
// keys. When two input keys map to the same field, the first non-empty one
// in key order wins.
func Canonical(rec Record) map[string]any {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := map[string]any{}
	for _, k := range keys {
		v := rec[k]
		canonical, ok := byAlias[normalizeKey(k)]
		if !ok {
			continue
		}
		if existing, taken := out[canonical]; taken && !isEmpty(existing) {
			continue
		}
		out[canonical] = v
	}
	return out
}

// ToContact maps one loose record to a contact. It fails only when the
// record has no usable name or a numeric field is malformed.
func ToContact(rec Record) (models.Contact, error) {
	f := Canonical(rec)
	c := models.Contact{
		FirstName:         asString(f["first_name"]),
		LastName:          asString(f["last_name"]),
		Email:             strings.ToLower(asString(f["email"])),
		Phone:             asString(f["phone"]),
		Company:           asString(f["company"]),
		Title:             asString(f["title"]),
		LinkedInURL:       asString(f["linkedin_url"]),
		RelationshipType:  asString(f["relationship_type"]),
		Industry:          asString(f["industry"]),
		Category:          asString(f["category"]),
		Notes:             asString(f["notes"]),
		Tags:              asStrings(f["tags"]),
		MutualConnections: asStrings(f["mutual_connections"]),
	}

	if c.FirstName == "" {
		if full := asString(f["full_name"]); full != "" {
			parts := strings.Fields(full)
			c.FirstName = parts[0]
			if c.LastName == "" && len(parts) > 1 {
				c.LastName = strings.Join(parts[1:], " ")
			}
		}
	}
	if c.FirstName == "" {
		return c, fmt.Errorf("missing first name")
	}

	if raw, ok := f["strength"]; ok && !isEmpty(raw) {
		s, err := asInt(raw)
		if err != nil {
			return c, fmt.Errorf("relationship strength: %w", err)
		}
		c.RelationshipStrength = s
	}
	return c, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// asStrings accepts JSON arrays or delimited strings ("a; b", "a, b", "a|b").
func asStrings(v any) []string {
	var raw []string
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		raw = t
	case []any:
		for _, e := range t {
			raw = append(raw, asString(e))
		}
	default:
		raw = strings.FieldsFunc(asString(v), func(r rune) bool {
			return r == ';' || r == ',' || r == '|'
		})
	}

	out := make([]string, 0, len(raw))
	seen := map[string]struct{}{}
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(math.Round(t)), nil
	case int:
		return t, nil
	}
	n, err := strconv.ParseFloat(asString(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", asString(v))
	}
	return int(math.Round(n)), nil
}
