package theme

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LearnReact/internal/providers/storage"
)

type memSettings struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemSettings() *memSettings {
	return &memSettings{data: make(map[string]string)}
}

func (m *memSettings) GetSetting(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memSettings) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func TestInitDefaults(t *testing.T) {
	tests := []struct {
		name        string
		saved       string
		defaultDark bool
		want        bool
	}{
		{"missing uses light default", "", false, false},
		{"missing uses dark default", "", true, true},
		{"saved dark", ModeDark, false, true},
		{"saved light", ModeLight, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := newMemSettings()
			if tt.saved != "" {
				settings.data[SettingKey] = tt.saved
			}

			flag := NewFlag(settings, tt.defaultDark, nil)
			require.NoError(t, flag.Init(context.Background()))
			assert.Equal(t, tt.want, flag.Current().Dark)
		})
	}
}

func TestTogglePersistsAndNotifies(t *testing.T) {
	settings := newMemSettings()
	flag := NewFlag(settings, false, nil)
	require.NoError(t, flag.Init(context.Background()))

	var seen []string
	stop := flag.Subscribe(func(s State) { seen = append(seen, s.Mode) })

	state, err := flag.Toggle(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Dark)
	assert.Equal(t, ModeDark, settings.data[SettingKey])
	assert.Equal(t, "#1a1a1a", state.Palette.Colors["background"])

	_, err = flag.Toggle(context.Background())
	require.NoError(t, err)
	stop()
	_, err = flag.Set(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, []string{ModeDark, ModeLight}, seen)
}

func TestSetFailureKeepsState(t *testing.T) {
	settings := newMemSettings()
	settings.err = errors.New("disk full")
	flag := NewFlag(settings, false, nil)

	state, err := flag.Set(context.Background(), true)
	assert.Error(t, err)
	assert.False(t, state.Dark)
	assert.False(t, flag.Current().Dark)
}

func TestPersistsThroughSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "theme.db")

	store, err := storage.Open(ctx, path, nil)
	require.NoError(t, err)
	flag := NewFlag(store, false, nil)
	require.NoError(t, flag.Init(ctx))
	_, err = flag.Toggle(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = storage.Open(ctx, path, nil)
	require.NoError(t, err)
	defer store.Close()

	reloaded := NewFlag(store, false, nil)
	require.NoError(t, reloaded.Init(ctx))
	assert.True(t, reloaded.Current().Dark)
}

func TestProvider(t *testing.T) {
	p := NewProvider(NewFlag(newMemSettings(), false, nil))
	ctx := context.Background()

	result, err := p.Execute(ctx, "theme.toggle", nil, nil)
	require.NoError(t, err)
	assert.True(t, result.Data["theme"].(State).Dark)

	result, err = p.Execute(ctx, "theme.set", map[string]interface{}{"dark": false}, nil)
	require.NoError(t, err)
	assert.False(t, result.Data["theme"].(State).Dark)

	_, err = p.Execute(ctx, "theme.set", map[string]interface{}{"dark": "yes"}, nil)
	assert.Error(t, err)

	result, err = p.Execute(ctx, "theme.palettes", nil, nil)
	require.NoError(t, err)
	assert.Len(t, result.Data["palettes"], 2)
}

type slowSettings struct {
	*memSettings
	delay time.Duration
}

func (s slowSettings) SetSetting(ctx context.Context, key, value string) error {
	time.Sleep(s.delay)
	return s.memSettings.SetSetting(ctx, key, value)
}

func TestConcurrentTogglesAreNotLost(t *testing.T) {
	settings := newMemSettings()
	flag := NewFlag(slowSettings{memSettings: settings, delay: 5 * time.Millisecond}, false, nil)
	require.NoError(t, flag.Init(context.Background()))

	const toggles = 6
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := flag.Toggle(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, flag.Current().Dark)
	saved, _, err := settings.GetSetting(context.Background(), SettingKey)
	require.NoError(t, err)
	assert.Equal(t, ModeLight, saved)
}

func TestConcurrentSetsAgreeWithStore(t *testing.T) {
	settings := newMemSettings()
	flag := NewFlag(slowSettings{memSettings: settings, delay: time.Millisecond}, false, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(dark bool) {
			defer wg.Done()
			_, err := flag.Set(context.Background(), dark)
			assert.NoError(t, err)
		}(i%2 == 0)
	}
	wg.Wait()

	saved, _, err := settings.GetSetting(context.Background(), SettingKey)
	require.NoError(t, err)
	assert.Equal(t, flag.Current().Mode, saved)
}
