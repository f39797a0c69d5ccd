package helpers

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link behaviors and the target values they map to
const (
	BehaviorNewWindow = "New Window"
	BehaviorModal     = "Modal"

	TargetBlank = "_blank"
	TargetSelf  = "_self"
	TargetModal = "modal"
)

// BehaviorAttr marks elements whose target is resolved by ApplyTargets
const BehaviorAttr = "data-target-behavior"

// Target maps a link behavior to a target value
func Target(behavior string) string {
	switch behavior {
	case BehaviorNewWindow:
		return TargetBlank
	case BehaviorModal:
		return TargetModal
	default:
		return TargetSelf
	}
}

// ApplyTarget sets the target of the selected elements: role="modal" for
// the modal behavior, a target attribute otherwise.
func ApplyTarget(sel *goquery.Selection, behavior string) {
	target := Target(behavior)
	if target == TargetModal {
		sel.SetAttr("role", TargetModal)
		return
	}
	sel.SetAttr("target", target)
}

// ApplyTargets resolves every element of an HTML fragment carrying
// BehaviorAttr and removes the marker.
func ApplyTargets(html string) (string, error) {
	if !strings.Contains(html, BehaviorAttr) {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("[" + BehaviorAttr + "]").Each(func(_ int, sel *goquery.Selection) {
		behavior, _ := sel.Attr(BehaviorAttr)
		ApplyTarget(sel, behavior)
		sel.RemoveAttr(BehaviorAttr)
	})

	if isDocument(html) {
		return doc.Html()
	}
	return doc.Find("body").Html()
}

func isDocument(html string) bool {
	head := strings.ToLower(strings.TrimSpace(html))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}
