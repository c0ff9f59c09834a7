package workflow

import (
	"fmt"
	"path/filepath"
	"strings"

	"setprep/internal/fileutil"
)

// ImportScriptName is the helper script written into the target folder.
const ImportScriptName = "import_to_itunes.ps1"

// ImportScript renders the PowerShell helper listing files to import.
func ImportScript(files []string) string {
	var b strings.Builder
	b.WriteString("# Manual step: import processed AIFF files into iTunes and create playlist\n")
	b.WriteString("$playlistName = Read-Host 'Playlist name'\n")
	b.WriteString("$aiffFiles = @(\n")
	for _, f := range files {
		fmt.Fprintf(&b, "    %s\n", psLiteral(f))
	}
	b.WriteString(")\n")
	b.WriteString("Write-Host 'Import these files in iTunes and add to playlist:' -ForegroundColor Cyan\n")
	b.WriteString("$aiffFiles | ForEach-Object { Write-Host $_ }\n")
	b.WriteString("Write-Host \"Suggested playlist name: $playlistName\" -ForegroundColor Yellow\n")
	return b.String()
}

// PowerShell also closes verbatim strings on typographic single quotes.
var psQuoteEscaper = strings.NewReplacer("'", "''", "\u2018", "\u2018\u2018", "\u2019", "\u2019\u2019")

// psLiteral quotes s as a PowerShell verbatim string.
func psLiteral(s string) string {
	return "'" + psQuoteEscaper.Replace(s) + "'"
}

// WriteImportScript writes the helper into target and returns its path.
func WriteImportScript(target string, files []string) (string, error) {
	path := filepath.Join(target, ImportScriptName)
	if err := fileutil.WriteFileAtomic(path, []byte(ImportScript(files)), 0o644); err != nil {
		return "", fmt.Errorf("write import script: %w", err)
	}
	return path, nil
}
