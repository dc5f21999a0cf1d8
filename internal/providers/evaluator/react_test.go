package evaluator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactCreateElement(t *testing.T) {
	rt := newTestRuntime(t)

	out, err := rt.Execute(context.Background(), `
function Welcome(props) { return React.createElement('h1', null, 'Hello, ' + props.name); }
return React.createElement(Welcome, {name: 'Sara', key: 'w1'}, 'a', 'b');
`, DefaultBindings())
	require.NoError(t, err)

	var el struct {
		Type  string                 `json:"type"`
		Key   string                 `json:"key"`
		Props map[string]interface{} `json:"props"`
	}
	require.NoError(t, json.Unmarshal([]byte(out.Value), &el))
	assert.Equal(t, "Welcome", el.Type)
	assert.Equal(t, "w1", el.Key)
	assert.Equal(t, "Sara", el.Props["name"])
	assert.Equal(t, []interface{}{"a", "b"}, el.Props["children"])
}

func TestReactNamespace(t *testing.T) {
	rt := newTestRuntime(t)

	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"version", "return React.version;", ReactVersion},
		{"useState initial", "const [count] = React.useState(5); return count;", "5"},
		{"useState lazy", "const [v] = React.useState(() => 'lazy'); return v;", "lazy"},
		{"useRef", "return React.useRef(3).current;", "3"},
		{"useMemo", "return React.useMemo(() => 6 * 7, []);", "42"},
		{"context", "const Theme = React.createContext('dark'); return React.useContext(Theme);", "dark"},
		{"fragment", "return React.createElement(React.Fragment, null).type;", "Fragment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := rt.Execute(context.Background(), tt.script, DefaultBindings())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Value)
		})
	}
}

func TestReactUseMemoPropagatesErrors(t *testing.T) {
	rt := newTestRuntime(t)

	_, err := rt.Execute(context.Background(), "return React.useMemo(() => { throw new Error('memo failed'); });", DefaultBindings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memo failed")
}
