package command

import "strings"

// rule maps a command keyword to a mode. Exact rules only match the whole
// token; the rest match anywhere inside it.
type rule struct {
	keyword string
	mode    Mode
	exact   bool
}

// rules is walked in order and the first match wins. Short keywords that
// would collide with longer commands are exact.
var rules = []rule{
	{"ENTERPH", EnterPH, false},
	{"EXITPH", ExitPH, false},
	{"CALPH", CalPH, false},
	{"TARGET", Target, false},
	{"PT", TargetUp, false},
	{"MT", TargetDown, false},
	{"ST", TargetSave, true},
	{"TT", ToggleUnits, false},
	{"1GP", MenuFlowRate, false},
	{"2GP", MenuAmount, false},
	{"3GP", MenuWaitTime, false},
	{"4GP", MenuCalibrate, false},
	{"5GP", MenuTest, true},
	{"6GP", MenuBuffer, true},
	{"LDOSE", Dosing, false},
	{"BACK", Back, false},
	{"FRATE", FlowRate, true},
	{"PFRATE", FlowRateUp, true},
	{"MFRATE", FlowRateDown, true},
	{"SFRATE", FlowRateSave, true},
	{"AMNT", Amount, true},
	{"PAMNT", AmountUp, true},
	{"MAMNT", AmountDown, true},
	{"SAMNT", AmountSave, true},
	{"WTIME", WaitTime, true},
	{"PWTIME", WaitTimeUp, true},
	{"MWTIME", WaitTimeDown, true},
	{"SWTIME", WaitTimeSave, true},
	{"PCAL", PumpCal, true},
	{"PCAL2", PumpCalPrime, true},
	{"PSTART", PumpCalStart, true},
	{"PCALW", TestVolume, true},
	{"PCALP", TestVolumeUp, true},
	{"PCALM", TestVolumeDown, true},
	{"PCALS", TestVolumeSave, true},
	{"S5GP", TestConfirm, true},
	{"BUFF", Buffer, true},
	{"PBUFF", BufferUp, true},
	{"MBUFF", BufferDown, true},
	{"SBUFF", BufferSave, true},
}

// Classify resolves a command token to a mode. The token is upper-cased and
// trimmed first. Unknown tokens yield None.
func Classify(token string) Mode {
	token = Normalize(token)
	if token == "" {
		return None
	}
	for _, r := range rules {
		if r.exact {
			if token == r.keyword {
				return r.mode
			}
			continue
		}
		if strings.Contains(token, r.keyword) {
			return r.mode
		}
	}
	return None
}

// Normalize upper-cases a token and strips surrounding whitespace.
func Normalize(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// Keyword returns the canonical command for a mode, or "" for None.
func Keyword(m Mode) string {
	for _, r := range rules {
		if r.mode == m {
			return r.keyword
		}
	}
	return ""
}
