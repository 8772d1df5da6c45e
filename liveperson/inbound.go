// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"log/slog"
	"strings"

	"github.com/convobench/convobench/harness"
)

// Inbound event types.
const (
	eventContent     = "ContentEvent"
	eventRichContent = "RichContentEvent"
)

// eligibleRole reports whether an originator role produces normalized
// messages. Consumer-originated echoes of our own sends are dropped.
func eligibleRole(role string) bool {
	return role == RoleAssignedAgent || role == RoleController
}

// normalizeEvent maps one inbound messaging event to a harness
// message. Returns nil for event shapes that carry no renderable
// content.
func normalizeEvent(event *InboundEvent, logger *slog.Logger) *harness.Message {
	if event == nil {
		return nil
	}

	switch event.Type {
	case eventContent:
		message := &harness.Message{}
		if event.ContentType == "text/plain" {
			message.Text = event.Message
		}
		if event.QuickReplies != nil {
			for _, reply := range event.QuickReplies.Replies {
				message.Buttons = append(message.Buttons, reply.toButton())
			}
		}
		return message

	case eventRichContent:
		if event.Content == nil {
			return nil
		}
		return normalizeRichContent(event, logger)

	default:
		logger.Debug("skipping inbound event of unhandled type", "event_type", event.Type)
		return nil
	}
}

// normalizeRichContent dispatches on the content root's structural
// tag. Card-tagged content folds into a single card; any other
// non-empty tag groups the flat element list into one card per title;
// only untagged content maps elements independently.
func normalizeRichContent(event *InboundEvent, logger *slog.Logger) *harness.Message {
	root := event.Content

	switch {
	case root.Tag == tagCard:
		card := foldCard(*root, logger)
		return &harness.Message{Cards: []harness.Card{card}}

	case root.Tag != "":
		cards := groupGenericCards(root.Elements)
		return &harness.Message{Cards: cards}

	default:
		return flattenElements(root.Elements, event.QuickReplies, logger)
	}
}

// foldCard recursively accumulates a container tree into one card:
// title-tagged text joins the headline, subtitle-tagged text joins the
// secondary line, untagged text joins the free-form content, buttons
// and images collect in document order.
func foldCard(root Element, logger *slog.Logger) harness.Card {
	var card harness.Card
	accumulateCard(&card, root.Elements, logger)
	return card
}

func accumulateCard(card *harness.Card, elements []Element, logger *slog.Logger) {
	for _, element := range elements {
		if element.isContainer() {
			accumulateCard(card, element.Elements, logger)
			continue
		}

		switch element.Type {
		case elementText, "":
			switch element.Tag {
			case tagTitle:
				card.Text = joinLines(card.Text, element.Text)
			case tagSubtitle:
				card.Subtext = joinLines(card.Subtext, element.Text)
			default:
				card.Content = joinLines(card.Content, element.Text)
			}
		case elementButton:
			card.Buttons = append(card.Buttons, elementButtonValue(element))
		case elementImage:
			card.Media = append(card.Media, elementMedia(element))
		default:
			logger.Debug("skipping rich-content element of unhandled type", "element_type", element.Type)
		}
	}
}

// groupGenericCards scans a flat element list and opens one card per
// title-tagged element. The neighborhood of each title supplies the
// rest: an image immediately before becomes the card's media, a
// subtitle immediately after becomes the secondary content, and a
// button group right after the title (or after the subtitle) supplies
// the buttons.
func groupGenericCards(elements []Element) []harness.Card {
	var cards []harness.Card
	for index, element := range elements {
		if element.Tag != tagTitle {
			continue
		}

		card := harness.Card{Text: element.Text}

		if index > 0 && elements[index-1].Type == elementImage {
			card.Media = append(card.Media, elementMedia(elements[index-1]))
		}

		if index+1 < len(elements) {
			next := elements[index+1]
			switch {
			case next.Tag == tagSubtitle:
				card.Content = next.Text
				if index+2 < len(elements) && elements[index+2].Tag == tagButton {
					card.Buttons = harvestButtons(elements[index+2])
				}
			case next.Tag == tagButton:
				card.Buttons = harvestButtons(next)
			}
		}

		cards = append(cards, card)
	}
	return cards
}

// harvestButtons collects the button elements under a button-tagged
// group.
func harvestButtons(group Element) []harness.Button {
	if group.Type == elementButton && len(group.Elements) == 0 {
		return []harness.Button{elementButtonValue(group)}
	}

	var buttons []harness.Button
	for _, child := range group.Elements {
		if child.Type == elementButton {
			buttons = append(buttons, elementButtonValue(child))
		}
	}
	return buttons
}

// flattenElements maps an untagged top-level element list in document
// order: text joins the message text, buttons and images append to
// their collections, containers each fold into one ad-hoc card.
// Trailing quick replies land as buttons after the elements.
func flattenElements(elements []Element, quickReplies *QuickReplies, logger *slog.Logger) *harness.Message {
	message := &harness.Message{}

	for _, element := range elements {
		if element.isContainer() {
			message.Cards = append(message.Cards, foldCard(element, logger))
			continue
		}

		switch element.Type {
		case elementText, "":
			message.Text = joinLines(message.Text, element.Text)
		case elementButton:
			message.Buttons = append(message.Buttons, elementButtonValue(element))
		case elementImage:
			message.Media = append(message.Media, elementMedia(element))
		default:
			logger.Debug("skipping rich-content element of unhandled type", "element_type", element.Type)
		}
	}

	if quickReplies != nil {
		for _, reply := range quickReplies.Replies {
			message.Buttons = append(message.Buttons, reply.toButton())
		}
	}

	return message
}

func joinLines(existing, addition string) string {
	if addition == "" {
		return existing
	}
	if existing == "" {
		return addition
	}
	return existing + "\n" + addition
}

// empty reports whether a normalized message carries nothing worth
// surfacing to the harness.
func empty(message *harness.Message) bool {
	return message == nil ||
		(message.Text == "" &&
			len(message.Buttons) == 0 &&
			len(message.Media) == 0 &&
			len(message.Cards) == 0)
}

// trimmedPreview returns a short loggable preview of inbound text.
// Message content may be long; logs carry at most one line.
func trimmedPreview(text string) string {
	const limit = 80
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > limit {
		return text[:limit] + "…"
	}
	return text
}
