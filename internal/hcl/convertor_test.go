package hcl

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type chartInput struct {
	Year   int      `bggo:"year"`
	Island string   `bggo:"island"`
	DPI    float64  `bggo:"dpi"`
	Cats   []string `bggo:"categories"`
	Note   string
}

func chartDefs() map[string]*config.InputDefinition {
	dpi := cty.NumberIntVal(300)
	return map[string]*config.InputDefinition{
		"year":       {Name: "year", Type: cty.Number},
		"island":     {Name: "island", Type: cty.String},
		"dpi":        {Name: "dpi", Type: cty.Number, Default: &dpi, Optional: true},
		"categories": {Name: "categories", Type: cty.List(cty.String), Optional: true},
	}
}

func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

func TestConverter_DecodeBody(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{
		"local": cty.ObjectVal(map[string]cty.Value{"year": cty.NumberIntVal(2023)}),
	}}
	args := map[string]hcl.Expression{
		"year":   parseExpr(t, "local.year"),
		"island": parseExpr(t, `"Gran Canaria"`),
	}
	var in chartInput

	// --- Act ---
	err := NewConverter().DecodeBody(context.Background(), &in, args, chartDefs(), evalCtx)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2023, in.Year)
	assert.Equal(t, "Gran Canaria", in.Island)
	assert.Equal(t, 300.0, in.DPI, "default should be applied")
	assert.Nil(t, in.Cats, "optional argument without default stays zero")
}

func TestConverter_DecodeBody_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    map[string]string
		wantErr string
	}{
		{
			name:    "missing required",
			args:    map[string]string{"island": `"Tenerife"`},
			wantErr: `missing required argument "year"`,
		},
		{
			name:    "unsupported argument",
			args:    map[string]string{"year": "2023", "island": `"x"`, "colour": `"red"`},
			wantErr: "unsupported argument(s): colour",
		},
		{
			name:    "type mismatch",
			args:    map[string]string{"year": `"twenty"`, "island": `"x"`},
			wantErr: "failed to decode argument 'year'",
		},
		{
			name:    "null value",
			args:    map[string]string{"year": "null", "island": `"x"`},
			wantErr: "must not be null",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := make(map[string]hcl.Expression)
			for k, v := range tc.args {
				args[k] = parseExpr(t, v)
			}
			var in chartInput

			err := NewConverter().DecodeBody(context.Background(), &in, args, chartDefs(), nil)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConverter_ToCtyValue(t *testing.T) {
	t.Parallel()

	type chartOutput struct {
		Path  string `cty:"path"`
		Bytes int64  `cty:"bytes"`
		Extra []int
	}

	c := NewConverter()

	val, err := c.ToCtyValue(&chartOutput{Path: "images/a.png", Bytes: 42})
	require.NoError(t, err)
	assert.Equal(t, "images/a.png", val.GetAttr("path").AsString())
	assert.True(t, val.GetAttr("bytes").Equals(cty.NumberIntVal(42)).True())

	val, err = c.ToCtyValue((*chartOutput)(nil))
	require.NoError(t, err)
	assert.Equal(t, cty.NilVal, val)

	val, err = c.ToCtyValue(nil)
	require.NoError(t, err)
	assert.Equal(t, cty.NilVal, val)
}
