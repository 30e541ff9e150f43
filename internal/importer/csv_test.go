package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/kbconsole/internal/scope"
)

const waterCSV = "业务域,一级,二级,三级,定义,案例1,案例2\n" +
	"水务,Billing,Fees,Late fee,Charged after due date,paid late,\n" +
	"水务,Billing,Fees,Late fee,Charged after due date,waived once,\n" +
	"水务,Billing,Fees,Reconnection fee,Charged on restore,,\n"

func TestParseCSVSummary(t *testing.T) {
	plan := ParseCSV(scope.Water, []byte(waterCSV))

	require.True(t, plan.OK(), "%v", plan.Errors)
	assert.False(t, plan.English)
	assert.Len(t, plan.Rows, 3)
	assert.Equal(t, 2, plan.Summary.Categories)
	assert.Equal(t, 2, plan.Summary.Cases)
	assert.Equal(t, []string{"paid late"}, plan.Rows[0].Cases)
	assert.Equal(t, 2, plan.Rows[0].Line)
}

func TestParseCSVStripsBOMAndSkipsBlankRows(t *testing.T) {
	data := "\xef\xbb\xbf业务域,一级,二级,三级,定义\n" +
		"水务,A,B,C,D\n" +
		",,,,\n" +
		"\n" +
		"水务,A,B,E,F\n"
	plan := ParseCSV(scope.Water, []byte(data))

	require.True(t, plan.OK(), "%v", plan.Errors)
	require.Len(t, plan.Rows, 2)
	assert.Equal(t, 2, plan.Rows[0].Line)
	// ",,,," is row 3; the empty text line is not a row
	assert.Equal(t, 4, plan.Rows[1].Line)
}

func TestParseCSVNumbersRecordsNotTextLines(t *testing.T) {
	data := "业务域,一级,二级,三级,定义,案例1\n" +
		"水务,A,B,C,D,\"line one\nline two\"\n" +
		"水务,A,B,G,,x\n"
	plan := ParseCSV(scope.Water, []byte(data))

	require.Len(t, plan.Errors, 1)
	assert.Equal(t, 3, plan.Errors[0].Row)
	assert.Equal(t, "定义", plan.Errors[0].Column)
}

func TestParseCSVMultilineCaseKeptInOneRow(t *testing.T) {
	data := "业务域,一级,二级,三级,定义,案例1\n" +
		"水务,A,B,C,D,\"first\r\nsecond\"\n" +
		"水务,A,B,E,F,x\n"
	plan := ParseCSV(scope.Water, []byte(data))

	require.True(t, plan.OK(), "%v", plan.Errors)
	require.Len(t, plan.Rows, 2)
	assert.Equal(t, []string{"first\nsecond"}, plan.Rows[0].Cases)
	assert.Equal(t, 3, plan.Rows[1].Line)
}

func TestParseCSVMissingDefinitionReportsRowAndColumn(t *testing.T) {
	data := "业务域,一级,二级,三级,定义\n" +
		"水务,A,B,C,D\n" +
		"水务,A,B,E,F\n" +
		"水务,A,B,G,\n"
	plan := ParseCSV(scope.Water, []byte(data))

	require.False(t, plan.OK())
	require.Len(t, plan.Errors, 1)
	e := plan.Errors[0]
	assert.Equal(t, 4, e.Row)
	assert.Equal(t, "定义", e.Column)
	assert.Equal(t, "required field is empty", e.Message)
	assert.Nil(t, plan.Rows)
	assert.Zero(t, plan.Summary.Categories)
}

func TestParseCSVMissingHeader(t *testing.T) {
	plan := ParseCSV(scope.Water, []byte("domain,l1,l2,l3\nwater,a,b,c\n"))

	require.Len(t, plan.Errors, 1)
	assert.Equal(t, 1, plan.Errors[0].Row)
	assert.Equal(t, "definition", plan.Errors[0].Column)
}

func TestParseCSVEmptyFile(t *testing.T) {
	plan := ParseCSV(scope.Water, nil)
	require.Len(t, plan.Errors, 1)
	assert.Equal(t, "file is empty", plan.Errors[0].Message)
}

func TestParseCSVDomainMustMatchScope(t *testing.T) {
	data := "业务域,一级,二级,三级,定义\n公交,A,B,C,D\n"
	plan := ParseCSV(scope.Water, []byte(data))

	require.Len(t, plan.Errors, 1)
	e := plan.Errors[0]
	assert.Equal(t, "业务域", e.Column)
	assert.Equal(t, "水务", *e.Expected)
	assert.Equal(t, "公交", *e.Actual)
}

func TestParseCSVConflictingDefinition(t *testing.T) {
	data := "业务域,一级,二级,三级,定义\n" +
		"水务,A,B,C,first\n" +
		"水务,A,B,C,second\n"
	plan := ParseCSV(scope.Water, []byte(data))

	require.Len(t, plan.Errors, 1)
	assert.Equal(t, 3, plan.Errors[0].Row)
	assert.Equal(t, "same as row 2", *plan.Errors[0].Expected)
}

func TestParseCSVEnglishHeadersEncodeToCanonical(t *testing.T) {
	data := "Domain,L1,L2,L3,Definition,case 1\n" +
		"bus,Routes,Changes,Detour,Temporary route change,road works\n"
	plan := ParseCSV(scope.Bus, []byte(data))
	require.True(t, plan.OK(), "%v", plan.Errors)
	assert.True(t, plan.English)

	out, err := plan.Encode()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "业务域,一级,二级,三级,定义,案例1", lines[0])
	assert.Equal(t, "公交,Routes,Changes,Detour,Temporary route change,road works", lines[1])

	again := ParseCSV(scope.Bus, out)
	assert.True(t, again.OK())
	assert.False(t, again.English)
}

func TestParseCSVMixedHeadersAreReencoded(t *testing.T) {
	data := "业务域,l1,l2,l3,definition,案例1\n" +
		"水务,Billing,Fees,Late fee,Charged after due date,paid late\n"
	plan := ParseCSV(scope.Water, []byte(data))
	require.True(t, plan.OK(), "%v", plan.Errors)
	assert.True(t, plan.English)

	out, err := plan.Encode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "业务域,一级,二级,三级,定义,案例1\n"))
}

func TestParseCSVMissingHeaderNamedInFileDialect(t *testing.T) {
	plan := ParseCSV(scope.Water, []byte("业务域,l1,l2,l3\n水务,a,b,c\n"))
	require.Len(t, plan.Errors, 1)
	assert.Equal(t, "定义", plan.Errors[0].Column)
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))
	assert.Equal(t, "业务域,一级,二级,三级,定义,案例1,案例2\n", buf.String())

	plan := ParseCSV(scope.Water, buf.Bytes())
	assert.True(t, plan.OK())
	assert.Empty(t, plan.Rows)
}
