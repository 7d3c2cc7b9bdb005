package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear_Predict(t *testing.T) {
	m := Linear{Intercept: 1, Weights: map[string]float64{"a": 2, "b": -1}}
	assert.InDelta(t, 1+2*3-1*0.5, m.Predict(map[string]float64{"a": 3, "b": 0.5, "ignored": 100}), 1e-12)
	assert.Equal(t, 1.0, m.Predict(nil))

	m.Link = LinkLogistic
	assert.InDelta(t, 0.5, Linear{Link: LinkLogistic}.Predict(nil), 1e-12)
	assert.Greater(t, m.Predict(map[string]float64{"a": 10}), 0.99)
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(`{"name":"priority-v1","outputs":{"score":{"intercept":10,"weights":{"severity":50}}}}`))
	require.NoError(t, err)
	assert.Equal(t, "priority-v1", f.Name)

	m, ok := f.Output("score")
	require.True(t, ok)
	assert.InDelta(t, 60, m.Predict(map[string]float64{"severity": 1}), 1e-12)

	_, ok = f.Output("missing")
	assert.False(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad json":   `{`,
		"no name":    `{"outputs":{"score":{}}}`,
		"no outputs": `{"name":"x"}`,
		"bad link":   `{"name":"x","outputs":{"score":{"link":"probit"}}}`,
		"min score":  `{"name":"x","min_score":-1,"outputs":{"score":{}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestFile_Threshold(t *testing.T) {
	f, err := Parse([]byte(`{"name":"m","outputs":{"a":{"link":"logistic"},"b":{"link":"logistic"}}}`))
	require.NoError(t, err)
	v, ok := f.Threshold()
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)

	f, err = Parse([]byte(`{"name":"m","min_score":0.8,"outputs":{"a":{"link":"logistic"}}}`))
	require.NoError(t, err)
	v, ok = f.Threshold()
	assert.True(t, ok)
	assert.Equal(t, 0.8, v)

	f, err = Parse([]byte(`{"name":"m","outputs":{"a":{"link":"logistic"},"b":{}}}`))
	require.NoError(t, err)
	_, ok = f.Threshold()
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"m","outputs":{"score":{"intercept":1}}}`), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "m", f.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
