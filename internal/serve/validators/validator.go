package validators

// Validator collects per-field errors so they can all be returned to the client at once.
type Validator struct {
	Errors map[string]any
}

func NewValidator() *Validator {
	return &Validator{Errors: make(map[string]any)}
}

func (v *Validator) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.addError(key, message)
	}
}

// CheckError adds err under key. An empty message falls back to the error text.
func (v *Validator) CheckError(err error, key, message string) {
	if err != nil && message == "" {
		message = err.Error()
	}
	v.Check(err == nil, key, message)
}

func (v *Validator) addError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}
