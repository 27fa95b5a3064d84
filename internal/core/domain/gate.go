package domain

import (
	"strconv"
	"strings"
)

// GateOutcome is the terminal result of one pass through the access gate.
type GateOutcome int

const (
	// GateMembershipRequired halts at the membership stage.
	GateMembershipRequired GateOutcome = iota
	// GateEntitlementRequired halts at the entitlement stage.
	GateEntitlementRequired
	// GateVideoNotFound passed the gate but the requested video does not exist.
	GateVideoNotFound
	// GateReleased passed all stages; Video carries the released content.
	GateReleased
)

func (o GateOutcome) String() string {
	switch o {
	case GateMembershipRequired:
		return "membership_required"
	case GateEntitlementRequired:
		return "entitlement_required"
	case GateVideoNotFound:
		return "video_not_found"
	default:
		return "released"
	}
}

// GateResult is produced by one gate pass. Video is set only for
// GateReleased; Access is the entitlement state observed at the
// entitlement stage (meaningful for GateEntitlementRequired and later).
type GateResult struct {
	Outcome GateOutcome
	Access  AccessClass
	Video   *Video
}

// StartParamKind classifies a /start deep-link parameter.
type StartParamKind int

const (
	StartPlain StartParamKind = iota
	StartToken
	StartVideo
)

// StartParam is a parsed /start deep-link parameter. ID is the user id for
// StartToken and the video id for StartVideo.
type StartParam struct {
	Kind StartParamKind
	ID   int64
}

// ParseStartParam parses a deep-link payload of the form "token_<id>" or
// "video_<id>". Anything else, including a malformed id, degrades to the
// plain welcome flow.
func ParseStartParam(raw string) StartParam {
	switch {
	case strings.HasPrefix(raw, "token_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(raw, "token_"), 10, 64); err == nil {
			return StartParam{Kind: StartToken, ID: id}
		}
	case strings.HasPrefix(raw, "video_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(raw, "video_"), 10, 64); err == nil {
			return StartParam{Kind: StartVideo, ID: id}
		}
	}
	return StartParam{Kind: StartPlain}
}
