package operation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestParseAndValid(t *testing.T) {
	tests := []struct {
		in    string
		want  Operation
		valid bool
	}{
		{in: "merge", want: Merge, valid: true},
		{in: " Split ", want: Split, valid: true},
		{in: "CONFORM", want: Conform, valid: true},
		{in: "convert", want: Convert, valid: true},
		{in: "reverse", want: Operation("reverse"), valid: false},
		{in: "", want: Operation(""), valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Parse(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, got.Valid())
		})
	}
}

func TestAllIsACopy(t *testing.T) {
	ops := All()
	require.Len(t, ops, 4)
	ops[0] = "mutated"
	assert.Equal(t, Merge, All()[0])
	assert.Equal(t, []string{"merge", "split", "conform", "convert"}, Names())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "CONVERT", Convert.Label())
	assert.NotEmpty(t, Merge.Description())
	assert.Empty(t, Operation("reverse").Description())
}

func TestValidateRejectsMissingFields(t *testing.T) {
	full := Request{InputPath: "/audio/in.wav", OutputPath: "/audio/out", Operation: Convert}
	require.NoError(t, full.Validate())

	tests := []struct {
		name    string
		mutate  func(*Request)
		missing []string
	}{
		{name: "no operation", mutate: func(r *Request) { r.Operation = "" }, missing: []string{"operation"}},
		{name: "no input", mutate: func(r *Request) { r.InputPath = "" }, missing: []string{"input path"}},
		{name: "blank output", mutate: func(r *Request) { r.OutputPath = "  " }, missing: []string{"output path"}},
		{name: "nothing", mutate: func(r *Request) { *r = Request{} }, missing: []string{"operation", "input path", "output path"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := full
			tt.mutate(&req)
			err := req.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.missing, verr.Missing)
		})
	}
}

func TestValidateRejectsUnknownOperation(t *testing.T) {
	req := Request{InputPath: "/audio/in.wav", OutputPath: "/audio/out", Operation: "normalize"}
	err := req.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, verr.Missing)
	assert.Contains(t, err.Error(), `unsupported operation "normalize"`)
}

func TestNormalizeAndArgs(t *testing.T) {
	req := Request{
		InputPath:  filepath.Join("/audio", "x", "..", "in.wav"),
		OutputPath: "/audio/out/",
		Operation:  Convert,
	}
	norm, err := req.Normalize()
	require.NoError(t, err)
	assert.Len(t, norm.Args(), 3)
	assert.Equal(t, "convert", norm.Args()[2])
	assert.True(t, filepath.IsAbs(norm.InputPath))
	assert.True(t, filepath.IsAbs(norm.OutputPath))
	assert.Equal(t, "in.wav", filepath.Base(norm.InputPath))
	assert.Equal(t, "out", filepath.Base(norm.OutputPath))
}

func TestNormalizeRelativePath(t *testing.T) {
	req := Request{InputPath: "in.wav", OutputPath: ".", Operation: Split}
	norm, err := req.Normalize()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(norm.InputPath))
	assert.True(t, filepath.IsAbs(norm.OutputPath))
}
