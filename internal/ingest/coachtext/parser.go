// Package coachtext extracts interval plans from loosely structured workout
// text. The upstream producer (a human or an LLM coach) is unreliable, so the
// parser is a best-effort extractor: malformed lines are dropped silently and
// it never fails on unrecognized input. An empty result means "nothing
// parseable" and callers must handle it.
package coachtext

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/runcoach/internal/models"
)

var (
	// sectionRe matches: **Warm-Up – 5 minutes** (en dash separator)
	sectionRe = regexp.MustCompile(`\*\*(.+?)\s*–\s*(\d+)\s*minutes?\*\*`)

	// repeatRe matches: Repeat the following 3 times
	repeatRe = regexp.MustCompile(`(?i)repeat.*?(\d+)\s*times`)

	// intervalRe matches: * 5 min @ 5.5 mph (description), bullet and
	// description optional
	intervalRe = regexp.MustCompile(`\*?\s*(\d+)\s*min\s*@\s*([\d.]+)\s*mph(?:\s*\((.*?)\))?`)

	// inclineRe matches an optional "incline 2" / "incline 1.5" token
	inclineRe = regexp.MustCompile(`(?i)incline\s*([\d.]+)`)
)

// Interval is one parsed interval line. Duration stays in minutes here; the
// workout service converts to canonical seconds.
type Interval struct {
	Section     string  `json:"section"`
	DurationMin int     `json:"duration_min"`
	SpeedMPH    float64 `json:"speed_mph"`
	Description string  `json:"description"`
	InclinePct  float64 `json:"incline"`
}

// parser holds the single-pass scanner state: the current section label and
// the repeat-capture buffer.
type parser struct {
	out         []Interval
	section     string
	inRepeat    bool
	repeatCount int
	buffer      []Interval
}

// Parse scans workout text line by line and returns the intervals in source
// order, with repeat blocks expanded inline at the point of closure.
func Parse(text string) []Interval {
	p := &parser{}
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		p.line(strings.TrimSpace(sc.Text()))
	}
	// A repeat block still open at end of input closes once.
	p.closeRepeat()
	return p.out
}

func (p *parser) line(line string) {
	// Blank line closes an open repeat block, otherwise carries no meaning.
	if line == "" {
		p.closeRepeat()
		return
	}

	if m := sectionRe.FindStringSubmatch(line); m != nil {
		p.closeRepeat()
		p.section = strings.TrimSpace(m[1])
		return
	}

	if m := repeatRe.FindStringSubmatch(line); m != nil {
		// A directive while already capturing closes the previous block.
		p.closeRepeat()
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		p.inRepeat = true
		p.repeatCount = n
		return
	}

	if m := intervalRe.FindStringSubmatch(line); m != nil {
		duration, err := strconv.Atoi(m[1])
		if err != nil || duration <= 0 {
			return
		}
		speed, err := strconv.ParseFloat(m[2], 64)
		if err != nil || speed <= 0 {
			return
		}

		iv := Interval{
			Section:     p.section,
			DurationMin: duration,
			SpeedMPH:    speed,
			Description: m[3],
		}
		if im := inclineRe.FindStringSubmatch(line); im != nil {
			if incline, err := strconv.ParseFloat(im[1], 64); err == nil {
				iv.InclinePct = incline
			}
		}

		if p.inRepeat {
			p.buffer = append(p.buffer, iv)
		} else {
			p.out = append(p.out, iv)
		}
		return
	}

	// Anything else is ignored.
}

// closeRepeat appends the buffered sequence repeatCount times and clears the
// capture state. No-op when no block is open.
func (p *parser) closeRepeat() {
	if !p.inRepeat {
		return
	}
	for i := 0; i < p.repeatCount; i++ {
		p.out = append(p.out, p.buffer...)
	}
	p.inRepeat = false
	p.repeatCount = 0
	p.buffer = nil
}

// Segments converts parsed intervals to canonical segments: minutes become
// seconds and section/description wording is normalized onto segment labels.
func Segments(intervals []Interval) []models.Segment {
	segs := make([]models.Segment, 0, len(intervals))
	for i, iv := range intervals {
		segs = append(segs, models.Segment{
			Index:      i,
			DurationS:  iv.DurationMin * 60,
			SpeedMPH:   iv.SpeedMPH,
			InclinePct: iv.InclinePct,
			Label:      labelFor(iv),
		})
	}
	return segs
}

func labelFor(iv Interval) models.SegmentLabel {
	for _, text := range []string{iv.Description, iv.Section} {
		switch t := strings.ToLower(text); {
		case strings.Contains(t, "warm"):
			return models.LabelWarmup
		case strings.Contains(t, "cool"):
			return models.LabelCooldown
		case strings.Contains(t, "recover"):
			return models.LabelRecovery
		case strings.Contains(t, "push"), strings.Contains(t, "surge"),
			strings.Contains(t, "tempo"), strings.Contains(t, "sprint"):
			return models.LabelPush
		}
	}
	return models.LabelSteady
}
