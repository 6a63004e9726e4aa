// Package translate turns a validated survey definition into the request
// body of the Poll API.
package translate

import (
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/mbolis/poll-creator/model"
	"github.com/mbolis/poll-creator/survey"
)

// Namespace seeds the name-based UUIDs produced when ids are mapped.
var Namespace = uuid.NewV5(uuid.NamespaceURL, "https://github.com/mbolis/poll-creator")

type Config struct {
	// Languages and FactSheetTypes are allow-lists. An empty list accepts
	// any non-empty value.
	Languages      []string
	FactSheetTypes []string

	// MapIDsToUUID rewrites question and option ids into deterministic
	// UUIDs, keeping dependencies consistent.
	MapIDsToUUID bool
}

type Params struct {
	Language      string
	FactSheetType string
	DueDate       *model.Date
}

type Translator struct {
	cfg Config
}

func New(cfg Config) *Translator {
	return &Translator{cfg}
}

// Translate builds the poll creation request for s. The survey is never
// modified; the result shares no memory with it.
func (t *Translator) Translate(s *model.Survey, p Params) (*model.PollCreate, error) {
	err := survey.Combine(
		checkAllowed(p.Language, t.cfg.Languages, survey.UnsupportedLanguage, "language"),
		checkAllowed(p.FactSheetType, t.cfg.FactSheetTypes, survey.UnsupportedFactSheetType, "factSheetType"),
	)
	if err != nil {
		return nil, err
	}

	c := s.Clone()
	if t.cfg.MapIDsToUUID {
		mapIDs(c.Questionnaire.Questions)
	}

	poll := &model.PollCreate{
		Title:                           c.Title,
		Language:                        p.Language,
		FactSheetType:                   p.FactSheetType,
		Questionnaire:                   c.Questionnaire,
		IntroductionText:                c.IntroductionText,
		IntroductionSubject:             c.IntroductionSubject,
		AdditionalFactSheetSubject:      c.AdditionalFactSheetSubject,
		AdditionalFactSheetText:         c.AdditionalFactSheetText,
		AdditionalFactSheetCheckEnabled: c.AdditionalFactSheetCheckEnabled,
		RepeatInterval:                  c.RepeatInterval,
		TimeFrame:                       c.TimeFrame,
		SendChangeNotifications:         c.SendChangeNotifications,
		AllowedPermissionStatus:         c.AllowedPermissionStatus,
		DynamicScopeCheckEnabled:        c.DynamicScopeCheckEnabled,
		FactSheetQuery:                  c.FactSheetQuery,
		UserQuery:                       c.UserQuery,
	}
	if p.DueDate != nil {
		d := *p.DueDate
		poll.DueDate = &d
	}
	if poll.Questionnaire.Questions == nil {
		poll.Questionnaire.Questions = []model.Question{}
	}
	return poll, nil
}

func checkAllowed(value string, allowed []string, kind survey.Kind, path string) *survey.Issue {
	if value == "" {
		return &survey.Issue{Kind: kind, Path: path, Message: path + " is required"}
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return &survey.Issue{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf("%s %q is not supported, expected one of %v", path, value, allowed),
	}
}
