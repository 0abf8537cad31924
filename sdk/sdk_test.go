package sdk

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRegistrar struct {
	names []string
}

func (r *recordingRegistrar) Register(name string, _ Plugin) {
	r.names = append(r.names, name)
}

func TestDeclareCarriesHostTags(t *testing.T) {
	called := false
	decl := Declare(func(Registrar) { called = true })

	assert.Equal(t, Compiler, decl.Compiler)
	assert.Equal(t, CoreVersion, decl.CoreVersion)
	require.NotNil(t, decl.Register)

	decl.Register(&recordingRegistrar{})
	assert.True(t, called)
}

func TestCompilerTags(t *testing.T) {
	assert.True(t, strings.HasSuffix(Compiler, runtime.Version()))
	assert.Equal(t, "c-abi/"+runtime.GOOS+"-"+runtime.GOARCH, CCompiler)
}

func TestFuncAdapter(t *testing.T) {
	var p Plugin = Func(func(s string) (string, bool) {
		if s == "x" {
			return "y", true
		}
		return "", false
	})

	out, ok := p.OnClip("x")
	assert.True(t, ok)
	assert.Equal(t, "y", out)

	_, ok = p.OnClip("z")
	assert.False(t, ok)
}

func TestRegisterMayBeCalledMoreThanOnce(t *testing.T) {
	decl := Declare(func(r Registrar) {
		r.Register("one", Func(func(string) (string, bool) { return "", false }))
		r.Register("two", Func(func(string) (string, bool) { return "", false }))
	})

	r := &recordingRegistrar{}
	decl.Register(r)
	assert.Equal(t, []string{"one", "two"}, r.names)
}
