package importer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_QuotedCommaPreserved(t *testing.T) {
	fields, err := ParseLine(`John,Doe,"Acme, Inc.",john@x.com`)
	require.NoError(t, err)
	require.Len(t, fields, 4)
	assert.Equal(t, []string{"John", "Doe", "Acme, Inc.", "john@x.com"}, fields)
}

func TestParseLine_EscapedQuotesAndEmpty(t *testing.T) {
	fields, err := ParseLine(`"Jane ""JJ""",,Globex`)
	require.NoError(t, err)
	assert.Equal(t, []string{`Jane "JJ"`, "", "Globex"}, fields)

	fields, err = ParseLine("")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestParseCSV_HeaderMappingAndBlankRows(t *testing.T) {
	doc := "First Name,Last Name,Company,E-mail Address,Tags\n" +
		"John,Doe,\"Acme, Inc.\",JOHN@x.com,\"go; rust\"\n" +
		",,,,\n" +
		"Jane,Roe,Globex,jane@y.com,\n"

	recs, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Acme, Inc.", recs[0]["Company"])

	c, err := ToContact(recs[0])
	require.NoError(t, err)
	assert.Equal(t, "John", c.FirstName)
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "Acme, Inc.", c.Company)
	assert.Equal(t, "john@x.com", c.Email)
	assert.Equal(t, []string{"go", "rust"}, c.Tags)
}

func TestParseCSV_ShortRowsAndEmptyDoc(t *testing.T) {
	recs, err := ParseCSV(strings.NewReader("name,email\nAda Lovelace\n"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, hasEmail := recs[0]["email"]
	assert.False(t, hasEmail)

	recs, err = ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestToContact_TolerantSpellings(t *testing.T) {
	spellings := []string{"firstName", "first_name", "First Name", "FirstName", "firstname", "FIRST-NAME"}
	for _, key := range spellings {
		c, err := ToContact(Record{key: "Ada"})
		require.NoError(t, err, key)
		assert.Equal(t, "Ada", c.FirstName, key)
	}
}

func TestToContact_FromJSONValues(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"Full Name": "Grace Brewster Hopper",
		"relationship_strength": 72.6,
		"labels": ["navy", "cobol", "navy"],
		"organisation": "US Navy",
		"Job Title": "Rear Admiral"
	}`), &rec))

	c, err := ToContact(rec)
	require.NoError(t, err)
	assert.Equal(t, "Grace", c.FirstName)
	assert.Equal(t, "Brewster Hopper", c.LastName)
	assert.Equal(t, 73, c.RelationshipStrength)
	assert.Equal(t, []string{"navy", "cobol"}, c.Tags)
	assert.Equal(t, "US Navy", c.Company)
	assert.Equal(t, "Rear Admiral", c.Title)
}

func TestToContact_Errors(t *testing.T) {
	_, err := ToContact(Record{"email": "x@y.com"})
	assert.EqualError(t, err, "missing first name")

	_, err = ToContact(Record{"first": "A", "strength": "very"})
	assert.Error(t, err)
}

func TestCanonical_FirstNonEmptyWins(t *testing.T) {
	got := Canonical(Record{"email": "", "Email Address": "a@b.c", "unknown": "x"})
	assert.Equal(t, "a@b.c", got["email"])
	_, ok := got["unknown"]
	assert.False(t, ok)
}
