package registry

import "github.com/GriffinCanCode/retrodesk/internal/shared/types"

func ptr[T any](v T) *T { return &v }

// Builtins returns the applications every desktop ships with
func Builtins() []types.AppDefinition {
	return []types.AppDefinition{
		{
			ID:   "terminal",
			Name: "Terminal",
			Icon: "terminal",
			DefaultWindow: &types.WindowDefaults{
				WidthRatio:  0.6,
				HeightRatio: 0.6,
				Opacity:     ptr(0.95),
			},
		},
		{
			ID:   "files",
			Name: "Files",
			Icon: "folder",
			DefaultWindow: &types.WindowDefaults{
				WidthRatio:  0.5,
				HeightRatio: 0.6,
			},
		},
		{
			ID:   "notes",
			Name: "Notes",
			Icon: "notes",
			DefaultWindow: &types.WindowDefaults{
				WidthRatio:  0.5,
				HeightRatio: 0.7,
			},
		},
		{
			ID:   "browser",
			Name: "Browser",
			Icon: "globe",
		},
		{
			ID:   "settings",
			Name: "Settings",
			Icon: "settings",
			DefaultWindow: &types.WindowDefaults{
				WidthRatio:     0.4,
				HeightRatio:    0.5,
				BackdropBlurPx: ptr(12),
			},
		},
		{
			ID:   "chat",
			Name: "Chat",
			Icon: "chat",
			DefaultWindow: &types.WindowDefaults{
				WidthRatio:  0.35,
				HeightRatio: 0.6,
				Theme:       ptr("dark"),
			},
		},
	}
}
