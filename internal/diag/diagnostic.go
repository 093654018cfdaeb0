package diag

import (
	"errors"

	"typster/internal/source"
)

type Diagnostic struct {
	Severity Severity
	Code     Code
	File     source.FileID
	Path     string
	Message  string
}

// FileDiagnostic converts a resolution error for id into an error diagnostic.
func FileDiagnostic(id source.FileID, err error) Diagnostic {
	d := Diagnostic{
		Severity: SevError,
		Code:     UnknownCode,
		File:     id,
		Message:  err.Error(),
	}
	var fe *FileError
	if errors.As(err, &fe) {
		d.Code = fe.Kind.Code()
		d.Path = fe.Path
	}
	return d
}
