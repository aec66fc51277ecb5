package tui

import (
	"fmt"
	"strings"

	"github.com/webszilla/work-zilla-explorer/internal/explorer"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}
	if len(m.path) == 0 {
		return "Loading..."
	}

	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	writeLine(titleStyle.Render("work-zilla explorer"))

	if m.session.LimitBanner() {
		writeLine(bannerStyle.Render(" Storage limit exceeded — uploads will be rejected (b to dismiss) "))
	}

	writeLine(breadcrumbStyle.Render(m.breadcrumb()))

	switch m.mode {
	case modeSearch:
		writeLine(searchStyle.Render(fmt.Sprintf("Search: %s_", m.input)))
		m.writeResults(writeLine)
	case modeResults:
		writeLine(searchStyle.Render(fmt.Sprintf("Search: %s", m.input)))
		m.writeResults(writeLine)
	case modeNewFolder:
		writeLine(statusStyle.Render(fmt.Sprintf("New folder: %s_", m.input)))
		m.writeListing(writeLine)
	case modeRename:
		writeLine(statusStyle.Render(fmt.Sprintf("Rename %s → %s_", m.renaming.Name, m.input)))
		m.writeListing(writeLine)
	default:
		m.writeListing(writeLine)
	}

	m.writeUploads(writeLine)

	if m.statusMsg != "" {
		writeLine(statusStyle.Render(m.statusMsg))
	}
	writeLine(quotaStyle.Render(m.quotaLine()))
	b.WriteString(helpStyle.Render(m.helpLine()))

	return b.String()
}

func (m *Model) breadcrumb() string {
	names := make([]string, len(m.path))
	for i, seg := range m.path {
		names[i] = seg.Name
	}
	return strings.Join(names, " / ")
}

func (m *Model) writeListing(writeLine func(string)) {
	if len(m.items) == 0 {
		writeLine(fileStyle.Render("  (empty)"))
		return
	}
	for i, e := range m.items {
		name := e.Name
		if e.IsFolder() {
			name += "/"
		}
		size := ""
		if !e.IsFolder() {
			size = sizeStyle.Render("  " + FormatSize(e.SizeBytes))
		}
		var line string
		if i == m.cursor && m.mode != modeResults {
			line = selectedStyle.Render("> " + name)
			if size != "" {
				line += size
			}
		} else if e.IsFolder() {
			line = "  " + folderStyle.Render(name)
		} else {
			line = "  " + fileStyle.Render(name) + size
		}
		writeLine(line)
	}
	if m.hasMore {
		writeLine(helpStyle.Render("  … more (press m)"))
	}
}

func (m *Model) writeResults(writeLine func(string)) {
	if len(m.results) == 0 {
		writeLine(fileStyle.Render("  (no matches)"))
		return
	}
	for i, r := range m.results {
		where := make([]string, len(r.FolderPath))
		for j, seg := range r.FolderPath {
			where[j] = seg.Name
		}
		line := fmt.Sprintf("  %s  %s  in %s",
			r.Filename, FormatSize(r.Size), strings.Join(where, "/"))
		if m.mode == modeResults && i == m.cursor {
			writeLine(selectedStyle.Render(">" + line[1:]))
		} else {
			writeLine(fileStyle.Render(line))
		}
	}
}

func (m *Model) writeUploads(writeLine func(string)) {
	if len(m.uploads) == 0 {
		return
	}
	writeLine("")
	writeLine(titleStyle.Render("Uploads"))
	shown := m.uploads
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, task := range shown {
		switch task.Status {
		case explorer.UploadStatusDone:
			writeLine(uploadDoneStyle.Render("  ✓ " + task.Name))
		case explorer.UploadStatusError:
			writeLine(uploadErrStyle.Render(fmt.Sprintf("  ✗ %s (%s)", task.Name, task.Err)))
		default:
			writeLine(statusStyle.Render("  ↑ " + task.Name))
		}
	}
}

func (m *Model) quotaLine() string {
	if m.quota.Unlimited() {
		return fmt.Sprintf("Storage: %s used (unlimited)", FormatGB(m.quota.StorageUsedGB))
	}
	return fmt.Sprintf("Storage: %s / %s (%s free)",
		FormatGB(m.quota.StorageUsedGB),
		FormatGB(m.quota.StorageTotalGB),
		FormatGB(m.quota.StorageRemainingGB()))
}
