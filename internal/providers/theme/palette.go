package theme

// Mode names, as stored in settings.
const (
	ModeDark  = "dark"
	ModeLight = "light"
)

// Palette is the set of colors and fonts for one mode
type Palette struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Colors map[string]string `json:"colors"`
	Fonts  map[string]string `json:"fonts"`
}

var fonts = map[string]string{
	"sans": "Inter, system-ui, sans-serif",
	"mono": "'Fira Code', Consolas, 'Courier New', monospace",
}

var palettes = map[string]Palette{
	ModeDark: {
		ID:   ModeDark,
		Name: "Dark",
		Type: ModeDark,
		Colors: map[string]string{
			"background":      "#1a1a1a",
			"surface":         "#252525",
			"primary":         "#61dafb",
			"accent":          "#10b981",
			"text":            "#ffffff",
			"textMuted":       "#a0a0a0",
			"border":          "#404040",
			"error":           "#f87171",
			"editor":          "#1e1e1e",
			"editorLine":      "#2d2d2d",
			"editorSelection": "#264f78",
		},
		Fonts: fonts,
	},
	ModeLight: {
		ID:   ModeLight,
		Name: "Light",
		Type: ModeLight,
		Colors: map[string]string{
			"background":      "#ffffff",
			"surface":         "#f5f5f5",
			"primary":         "#087ea4",
			"accent":          "#10b981",
			"text":            "#1a1a1a",
			"textMuted":       "#666666",
			"border":          "#e0e0e0",
			"error":           "#dc2626",
			"editor":          "#1e1e1e",
			"editorLine":      "#2d2d2d",
			"editorSelection": "#264f78",
		},
		Fonts: fonts,
	},
}

// PaletteFor returns the palette for a mode.
func PaletteFor(dark bool) Palette {
	if dark {
		return palettes[ModeDark]
	}
	return palettes[ModeLight]
}

// Palettes returns both palettes.
func Palettes() []Palette {
	return []Palette{palettes[ModeLight], palettes[ModeDark]}
}
