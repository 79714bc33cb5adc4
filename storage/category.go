package storage

import "strings"

// categoryTable maps one display category to the set of extensions it covers.
type categoryTable struct {
	tag  string
	exts map[string]struct{}
}

// CategoryGeneric is the fallback tag for extensions no table claims.
const CategoryGeneric = "generic"

// categories is checked in order; first table containing the extension wins.
var categories = []categoryTable{
	{"audio", extSet("aif", "cda", "mid", "midi", "mp3", "mpa", "ogg", "wav", "wma", "wpl")},
	{"image", extSet("ai", "bmp", "gif", "ico", "jpeg", "jpg", "png", "ps", "psd", "svg", "tif", "tiff")},
	{"video", extSet("3g2", "3gp", "avi", "flv", "h264", "m4v", "mkv", "mov", "mp4", "mpg", "mpeg", "rm", "swf", "vob", "wmv")},
	{"compressed", extSet("7z", "arj", "deb", "gz", "pkg", "rar", "rpm", "z", "zip")},
	{"write", extSet("doc", "docx", "odt", "pdf", "rtf", "tex", "txt", "wpd")},
	{"presentation", extSet("key", "odp", "pps", "ppt", "pptx")},
	{"spreadsheet", extSet("ods", "xls", "xlsm", "xlsx")},
	{"font", extSet("fnt", "fon", "otf", "ttf")},
	{"code", extSet("c", "cgi", "class", "cpp", "cs", "go", "h", "java", "js", "php", "pl", "py", "rb", "sh", "swift", "vb")},
	{"executable", extSet("apk", "bat", "bin", "exe", "gadget", "jar", "msi", "wsf")},
	{"data", extSet("csv", "dat", "db", "dbf", "json", "log", "mdb", "sav", "sql", "tar", "xml", "yaml", "yml")},
	{"web", extSet("asp", "aspx", "cer", "cfm", "css", "htm", "html", "jsp", "part", "rss", "xhtml")},
	{"disk", extSet("dmg", "iso", "toast", "vcd")},
	{"system", extSet("bak", "cab", "cfg", "cpl", "cur", "dll", "dmp", "drv", "icns", "ini", "lnk", "sys", "tmp")},
}

func extSet(exts ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

// Categorize returns the display category for a file extension. It is total:
// unknown or empty extensions fall through to CategoryGeneric.
func Categorize(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, table := range categories {
		if _, ok := table.exts[ext]; ok {
			return table.tag
		}
	}
	return CategoryGeneric
}
