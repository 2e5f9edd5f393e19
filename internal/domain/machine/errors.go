package machine

import (
	"fmt"

	"github.com/factoryplan/aps-go/internal/domain/shared"
)

// UnknownMachineError is raised when a plan references a machine code that
// is missing from the reference snapshot.
type UnknownMachineError struct {
	*shared.DomainError
	Code string
}

func NewUnknownMachineError(code string) *UnknownMachineError {
	return &UnknownMachineError{
		DomainError: shared.NewDomainError(fmt.Sprintf("unknown machine %q", code)),
		Code:        code,
	}
}

// UnknownArticleError is raised when no speed row, not even a wildcard one,
// resolves for an article on a machine.
type UnknownArticleError struct {
	*shared.DomainError
	MachineCode string
	ArticleNr   string
}

func NewUnknownArticleError(machineCode, articleNr string) *UnknownArticleError {
	return &UnknownArticleError{
		DomainError: shared.NewDomainError(
			fmt.Sprintf("no speed for article %q on machine %q", articleNr, machineCode)),
		MachineCode: machineCode,
		ArticleNr:   articleNr,
	}
}
