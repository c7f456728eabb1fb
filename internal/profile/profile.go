// Package profile normalizes and validates the raw learner payload into a
// types.StudentProfile. It performs no I/O.
package profile

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/pathway-engine/pkg/types"
)

// Recognized raw payload keys.
const (
	KeyLearningStyle = "learning_style"
	KeyProgress      = "progress"
	KeyTopic         = "topic"
	KeyHobby         = "hobby"
	KeyDomain        = "domain"
	KeyGoogleAPIKey  = "google_api_key"
	KeyTavilyAPIKey  = "tavily_api_key"
)

// form is the intermediate shape checked by the struct validator. The name
// tags carry the raw key reported back to the caller.
type form struct {
	LearningStyle string `validate:"required" name:"learning_style"`
	Topic         string `validate:"required" name:"progress"`
	Hobby         string `validate:"required" name:"hobby"`
	Domain        string `validate:"required" name:"domain"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("name")
	})
	return v
}

// Validate converts raw into a StudentProfile. Required attributes must be
// present and non-blank after trimming. Credentials supplied in raw take
// precedence; missing ones are filled from defaults. Both credentials must
// be resolved, otherwise a *types.ValidationError is returned.
func Validate(raw map[string]string, defaults types.Credentials) (types.StudentProfile, error) {
	get := func(key string) string { return strings.TrimSpace(raw[key]) }

	topic := get(KeyProgress)
	if topic == "" {
		topic = get(KeyTopic)
	}

	f := form{
		LearningStyle: get(KeyLearningStyle),
		Topic:         topic,
		Hobby:         get(KeyHobby),
		Domain:        get(KeyDomain),
	}

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return types.StudentProfile{}, &types.ValidationError{Reason: err.Error()}
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		sort.Strings(fields)
		return types.StudentProfile{}, &types.ValidationError{Fields: fields, Reason: "missing required fields"}
	}

	creds := types.Credentials{
		SearchKey:     get(KeyTavilyAPIKey),
		GenerationKey: get(KeyGoogleAPIKey),
	}.Merge(defaults)

	var missing []string
	if creds.GenerationKey == "" {
		missing = append(missing, KeyGoogleAPIKey)
	}
	if creds.SearchKey == "" {
		missing = append(missing, KeyTavilyAPIKey)
	}
	if len(missing) > 0 {
		return types.StudentProfile{}, &types.ValidationError{Fields: missing, Reason: "API keys not available"}
	}

	return types.StudentProfile{
		LearningStyle: f.LearningStyle,
		Topic:         f.Topic,
		Hobby:         f.Hobby,
		Domain:        f.Domain,
		Credentials:   creds,
	}, nil
}

// Preferences is the payload shape sent by the web front end.
type Preferences struct {
	LearningStyle string `json:"learningStyle"`
	Topic         string `json:"topic"`
	Hobbies       string `json:"hobbies"`
	Domain        string `json:"domain"`
}

// Raw maps front-end preferences onto the raw key set. Credentials are left
// out so they resolve from server defaults.
func (p Preferences) Raw() map[string]string {
	return map[string]string{
		KeyLearningStyle: p.LearningStyle,
		KeyProgress:      p.Topic,
		KeyHobby:         p.Hobbies,
		KeyDomain:        p.Domain,
	}
}
