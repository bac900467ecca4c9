package palette

// extensionColors maps a lower-cased file extension to its fill color.
var extensionColors = map[string]string{
	// web
	"js":     "#f1e05a",
	"mjs":    "#f1e05a",
	"cjs":    "#f1e05a",
	"jsx":    "#f1e05a",
	"ts":     "#3178c6",
	"tsx":    "#3178c6",
	"html":   "#e34c26",
	"css":    "#563d7c",
	"scss":   "#c6538c",
	"less":   "#1d365d",
	"vue":    "#41b883",
	"svelte": "#ff3e00",

	// systems
	"go":    "#00add8",
	"rs":    "#dea584",
	"c":     "#555555",
	"h":     "#555555",
	"cc":    "#f34b7d",
	"cpp":   "#f34b7d",
	"hpp":   "#f34b7d",
	"java":  "#b07219",
	"kt":    "#a97bff",
	"swift": "#f05138",
	"cs":    "#178600",
	"zig":   "#ec915c",

	// scripting
	"py":  "#3572a5",
	"rb":  "#701516",
	"php": "#4f5d95",
	"sh":  "#89e051",
	"lua": "#000080",
	"pl":  "#0298c3",

	// data and docs
	"json": "#292929",
	"yaml": "#cb171e",
	"yml":  "#cb171e",
	"toml": "#9c4221",
	"xml":  "#0060ac",
	"md":   "#083fa1",
	"txt":  "#9aa4b0",
	"csv":  "#237346",
	"sql":  "#e38c00",

	// media and fonts
	"svg":   "#ff9900",
	"png":   "#a4c639",
	"jpg":   "#a4c639",
	"gif":   "#a4c639",
	"woff":  "#7a7a7a",
	"woff2": "#7a7a7a",
	"ttf":   "#7a7a7a",
	"otf":   "#7a7a7a",
}
