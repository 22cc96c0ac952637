package tools

import "path/filepath"

func sevenZipArgs(inv Invocation) []string {
	return []string{"x", "-y", inv.Input, "-o" + inv.Output}
}

func unrarArgs(inv Invocation) []string {
	return []string{"x", "-o+", "-y", inv.Input, withTrailingSep(inv.Output)}
}

func winrarArgs(inv Invocation) []string {
	return []string{"x", "-y", "-ibck", inv.Input, withTrailingSep(inv.Output)}
}

// rarCreateArgs reads the member list from an @listfile so page order and long
// argument lists are handled by the tool.
func rarCreateArgs(inv Invocation) []string {
	return []string{"a", "-ep1", "-idq", "-y", inv.Output, "@" + inv.Input}
}

func withTrailingSep(dir string) string {
	if len(dir) > 0 && dir[len(dir)-1] == filepath.Separator {
		return dir
	}
	return dir + string(filepath.Separator)
}

// ExtractCandidates lists RAR extraction tools in priority order.
func ExtractCandidates() []Candidate {
	return []Candidate{
		{Name: "7-Zip", Path: `C:\Program Files\7-Zip\7z.exe`, Args: sevenZipArgs},
		{Name: "7-Zip", Path: `C:\Program Files (x86)\7-Zip\7z.exe`, Args: sevenZipArgs},
		{Name: "7-Zip", Path: "/usr/bin/7z", Args: sevenZipArgs},
		{Name: "7-Zip", Path: "/usr/local/bin/7z", Args: sevenZipArgs},
		{Name: "7-Zip", Path: "/opt/homebrew/bin/7z", Args: sevenZipArgs},
		{Name: "7-Zip", Path: "7zz", Args: sevenZipArgs},
		{Name: "7-Zip", Path: "7z", Args: sevenZipArgs},
		{Name: "unrar", Path: "/usr/bin/unrar", Args: unrarArgs},
		{Name: "unrar", Path: "/usr/local/bin/unrar", Args: unrarArgs},
		{Name: "unrar", Path: "/opt/homebrew/bin/unrar", Args: unrarArgs},
		{Name: "unrar", Path: "unrar", Args: unrarArgs},
		{Name: "WinRAR", Path: `C:\Program Files\WinRAR\WinRAR.exe`, Args: winrarArgs},
		{Name: "WinRAR", Path: `C:\Program Files (x86)\WinRAR\WinRAR.exe`, Args: winrarArgs},
	}
}

// CreateRARCandidates lists RAR creation tools in priority order. Only the
// proprietary rar binary can write RAR archives.
func CreateRARCandidates() []Candidate {
	return []Candidate{
		{Name: "WinRAR", Path: `C:\Program Files\WinRAR\Rar.exe`, Args: rarCreateArgs},
		{Name: "WinRAR", Path: `C:\Program Files (x86)\WinRAR\Rar.exe`, Args: rarCreateArgs},
		{Name: "rar", Path: "/usr/bin/rar", Args: rarCreateArgs},
		{Name: "rar", Path: "/usr/local/bin/rar", Args: rarCreateArgs},
		{Name: "rar", Path: "/opt/homebrew/bin/rar", Args: rarCreateArgs},
		{Name: "rar", Path: "rar", Args: rarCreateArgs},
	}
}
