package telegram

import (
	"species-bot/api/internal/species/state"
	"species-bot/api/internal/species/types"
	"species-bot/api/internal/species/view"
)

const (
	helpText    = "Send me a photo of a plant, animal or fungus and I will try to identify it. /cancel stops the current request."
	loadingText = "Looking at your photo…"
)

func resultText(s state.Snapshot) string {
	if s.State == state.Success {
		return view.Render(view.ToViewModel(s.Result))
	}
	var reason string
	switch s.Kind {
	case types.KindFileRead:
		reason = "I could not read that image."
	case types.KindInference:
		reason = "The identification service did not answer."
	case types.KindParse:
		reason = "I could not make sense of the identification."
	case types.KindCancelled:
		reason = "The request was cancelled."
	}
	msg := view.Render(view.ToViewModel(nil))
	if reason == "" {
		return msg
	}
	return reason + "\n" + msg
}
