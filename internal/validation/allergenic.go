package validation

// Allergenic name bounds.
const (
	MinAllergenicNameLength = 3
	MaxAllergenicNameLength = 255
)

// Allergenic is a validated allergenic write payload.
type Allergenic struct {
	Name    string
	Picture string
}

// ValidateAllergenic checks a create or update payload for an allergenic.
func ValidateAllergenic(payload map[string]any) (*Allergenic, error) {
	name, _, err := checkString(payload, "name", stringRule{
		required: true,
		min:      MinAllergenicNameLength,
		max:      MaxAllergenicNameLength,
	})
	if err != nil {
		return nil, err
	}

	picture, present, err := checkString(payload, "picture", stringRule{})
	if err != nil {
		return nil, err
	}
	if present && !isBase64(picture) {
		return nil, newError("picture", "%q must be a valid base64 string", "picture")
	}

	if err := checkUnknown(payload, "name", "picture"); err != nil {
		return nil, err
	}

	return &Allergenic{Name: name, Picture: picture}, nil
}
