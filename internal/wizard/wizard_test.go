package wizard

import (
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	validate := ValidateIdentifier("service module")

	valid := []string{"email_generation", "testing", "a", "v2_generator", "  persona_generation  "}
	for _, name := range valid {
		if err := validate(name); err != nil {
			t.Errorf("ValidateIdentifier(%q) = %v, want nil", name, err)
		}
	}

	invalid := map[string]string{
		"":               "required",
		"   ":            "required",
		"Email":          "lowercase",
		"9lives":         "lowercase",
		"email-gen":      "lowercase",
		"email.generate": "lowercase",
		"email generate": "lowercase",
		"_hidden":        "lowercase",
	}
	for name, fragment := range invalid {
		err := validate(name)
		if err == nil {
			t.Errorf("ValidateIdentifier(%q) = nil, want error", name)
			continue
		}
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("ValidateIdentifier(%q) = %q, want mention of %q", name, err, fragment)
		}
	}
}

func TestValidateIdentifierNamesField(t *testing.T) {
	err := ValidateIdentifier("service function")("")
	if err == nil || !strings.Contains(err.Error(), "service function") {
		t.Errorf("error %v should name the field being validated", err)
	}
}
