package vfs

import (
	"github.com/GriffinCanCode/retrodesk/internal/shared/paths"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// DefaultTree is the built-in tree used before the snapshot arrives and
// whenever it cannot be fetched. Each call returns a fresh copy.
func DefaultTree() types.Directory {
	return types.Directory{
		paths.Home: types.Directory{
			"about.txt": types.File("This is a portfolio website designed to look like a terminal."),
			"projects": types.Directory{
				"glitch-app.txt": types.File("glitch.app: see more at /blog/glitch-house"),
				"README.txt":     types.File("Open with Notes for links to blog and assets."),
			},
			"socials.txt": types.File("You can find me on:\n- GitHub: ...\n- LinkedIn: ..."),
			"notes": types.Directory{
				"glitch.md": types.File("This is my recent project.\n\n" +
					"- Open the blog inside OS: <a href=\"/blog/glitch-house\">Open in Browser App</a>\n" +
					"- Open in new tab: <a href=\"/blog/glitch-house\" target=\"_blank\" rel=\"noopener noreferrer\">glitch.house blog</a>\n"),
			},
		},
	}
}

// EmptyTree is a root holding only an empty home directory
func EmptyTree() types.Directory {
	return types.Directory{paths.Home: types.Directory{}}
}
