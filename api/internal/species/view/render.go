package view

import "strings"

// Render lays the view model out as plain text for chat clients.
func Render(vm ViewModel) string {
	if vm.NoData {
		return vm.Message
	}
	var b strings.Builder
	b.WriteString(vm.ScientificName + "\n")
	b.WriteString("Common Names: " + vm.CommonNames + "\n\n")

	b.WriteString("Brief Description:\n")
	bullets(&b, vm.BriefDescription)
	b.WriteString("Confidence Level: " + vm.Confidence + "\n\n")

	b.WriteString("Overall Appearance:\n" + vm.OverallAppearance + "\n\n")

	b.WriteString("Distinguishing Features:\n")
	bullets(&b, vm.Features)
	b.WriteString("\n")

	b.WriteString("Habitat:\n" + vm.Habitat + "\n\n")
	b.WriteString("Geographic Location:\n" + vm.GeographicLocation + "\n\n")

	b.WriteString("Links to Additional Resources:\n")
	if len(vm.Resources) == 0 {
		b.WriteString("• " + vm.ResourcesNote + "\n")
	}
	for _, l := range vm.Resources {
		b.WriteString("• " + l.Title + ": " + l.URL + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func bullets(b *strings.Builder, xs []string) {
	for _, x := range xs {
		b.WriteString("• " + x + "\n")
	}
}
