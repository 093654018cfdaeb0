package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Файловые
	IOInfo          Code = 4000
	IOFileNotFound  Code = 4001
	IOIsDirectory   Code = 4002
	IOAccessDenied  Code = 4003
	IOReadFailed    Code = 4004
	IOInvalidUTF8   Code = 4005
	IOStdinReadFail Code = 4006

	// Пакеты
	PRJInfo            Code = 5000
	PRJPackageDownload Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	IOInfo:             "File information",
	IOFileNotFound:     "File not found",
	IOIsDirectory:      "Expected a file, found a directory",
	IOAccessDenied:     "Access denied",
	IOReadFailed:       "Failed to read file",
	IOInvalidUTF8:      "File is not valid UTF-8",
	IOStdinReadFail:    "Failed to read standard input",
	PRJInfo:            "Package information",
	PRJPackageDownload: "Failed to prepare package",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
