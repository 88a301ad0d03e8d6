// Package ui renders banners and test plans for the terminal.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"go.rxlab.dev/toolbox/testkit"
)

const unnamedGroup = "Unnamed Group"

// TreeOptions controls PlanTree.
type TreeOptions struct {
	NoColor bool
	ShowIDs bool
}

type treeTheme struct {
	title, kind, value, id *color.Color
}

func newTreeTheme(noColor bool) treeTheme {
	return treeTheme{
		title: GetColor(noColor, color.Bold),
		kind:  GetColor(noColor, color.FgCyan),
		value: GetColor(noColor, color.FgGreen),
		id:    GetColor(noColor, color.Faint),
	}
}

// PlanTree renders plan as an indented tree, one line per step:
//
//	Simple test (3 root steps, 5 total)
//	├─ textInput "Hello world"
//	├─ buttonClick "Plus" on message 1
//	└─ group group-1 on message 1
//	   ├─ expectMessageText message 1 contains Hello
//	   └─ expectMessageCount =1
func PlanTree(plan testkit.Plan, opts TreeOptions) string {
	theme := newTreeTheme(opts.NoColor)

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d root steps, %d total)\n",
		theme.title.Sprint(plan.Name), len(plan.Steps), plan.Len())
	writeTree(&b, plan.Steps, "", theme, opts)
	return b.String()
}

func writeTree(b *strings.Builder, steps []testkit.Step, prefix string, theme treeTheme, opts TreeOptions) {
	for i, step := range steps {
		branch, childPrefix := "├─ ", "│  "
		if i == len(steps)-1 {
			branch, childPrefix = "└─ ", "   "
		}

		b.WriteString(prefix + branch + theme.kind.Sprint(string(step.Kind())))
		if desc := DescribeStep(step); desc != "" {
			b.WriteString(" " + theme.value.Sprint(desc))
		}
		if opts.ShowIDs {
			b.WriteString(" " + theme.id.Sprint(step.StepID().String()))
		}
		b.WriteByte('\n')

		if g, ok := step.(testkit.Group); ok {
			writeTree(b, g.Children, prefix+childPrefix, theme, opts)
		}
	}
}

// DescribeStep returns a short human readable summary of a single step,
// without its children.
func DescribeStep(step testkit.Step) string {
	switch s := step.(type) {
	case testkit.TextInput:
		return strconv.Quote(s.Text)
	case testkit.ButtonClick:
		return fmt.Sprintf("%q on message %d", s.ButtonText, s.MessageID)
	case testkit.ExpectMessageText:
		desc := s.Text.String()
		if s.Text.Comparison == testkit.TextEquals {
			desc = "equals " + desc
		}
		return fmt.Sprintf("message %d %s", s.MessageID, desc)
	case testkit.ExpectMessageCount:
		return s.Count.String()
	case testkit.Group:
		name := s.Name
		if name == "" {
			name = unnamedGroup
		}
		return fmt.Sprintf("%s on message %d", name, s.MessageID)
	default:
		panic(fmt.Sprintf("ui: unknown step type %T", step))
	}
}
