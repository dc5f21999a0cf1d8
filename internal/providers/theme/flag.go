package theme

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
)

// SettingKey is where the mode is persisted.
const SettingKey = "theme"

// Settings is the persistence the flag needs.
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// State is what observers see.
type State struct {
	Dark    bool    `json:"dark"`
	Mode    string  `json:"mode"`
	Palette Palette `json:"palette"`
}

// Flag is the observable dark-mode flag.
type Flag struct {
	settings    Settings
	defaultDark bool
	logger      *zap.Logger

	// writeMu serialises changes across persist and update.
	writeMu sync.Mutex

	mu      sync.RWMutex
	dark    bool
	subs    map[int]func(State)
	nextSub int
}

// NewFlag creates a flag. Call Init to load the persisted value.
func NewFlag(settings Settings, defaultDark bool, logger *zap.Logger) *Flag {
	return &Flag{
		settings:    settings,
		defaultDark: defaultDark,
		logger:      logging.OrNop(logger),
		dark:        defaultDark,
		subs:        make(map[int]func(State)),
	}
}

// Init loads the persisted mode. A missing value keeps the default.
func (f *Flag) Init(ctx context.Context) error {
	if f.settings == nil {
		return nil
	}

	saved, found, err := f.settings.GetSetting(ctx, SettingKey)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	f.mu.Lock()
	switch {
	case !found:
		f.dark = f.defaultDark
	case saved == ModeDark:
		f.dark = true
	default:
		f.dark = false
	}
	dark := f.dark
	f.mu.Unlock()

	f.logger.Info("theme loaded", zap.Bool("dark", dark), zap.Bool("persisted", found))
	return nil
}

// Current returns the current state.
func (f *Flag) Current() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return stateFor(f.dark)
}

// Toggle flips the mode.
func (f *Flag) Toggle(ctx context.Context) (State, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return f.set(ctx, !f.Current().Dark)
}

// Set persists dark and notifies subscribers. Nothing changes when persisting fails.
func (f *Flag) Set(ctx context.Context, dark bool) (State, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return f.set(ctx, dark)
}

func (f *Flag) set(ctx context.Context, dark bool) (State, error) {
	if f.settings != nil {
		mode := ModeLight
		if dark {
			mode = ModeDark
		}
		if err := f.settings.SetSetting(ctx, SettingKey, mode); err != nil {
			return f.Current(), fmt.Errorf("save theme: %w", err)
		}
	}

	f.mu.Lock()
	f.dark = dark
	state := stateFor(dark)
	subs := make([]func(State), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
	return state, nil
}

// Subscribe registers fn for every change. The returned func unregisters it.
func (f *Flag) Subscribe(fn func(State)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := f.nextSub
	f.nextSub++
	f.subs[key] = fn

	return func() {
		f.mu.Lock()
		delete(f.subs, key)
		f.mu.Unlock()
	}
}

func stateFor(dark bool) State {
	mode := ModeLight
	if dark {
		mode = ModeDark
	}
	return State{Dark: dark, Mode: mode, Palette: PaletteFor(dark)}
}
