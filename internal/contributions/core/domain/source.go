package domain

// Source identifies one of the configured code-hosting services.
type Source string

const (
	SourceGitHub Source = "github"
	SourceGitLab Source = "gitlab"
)

// Sources lists every configured source in a fixed order.
var Sources = []Source{SourceGitHub, SourceGitLab}

func (s Source) Valid() bool {
	switch s {
	case SourceGitHub, SourceGitLab:
		return true
	default:
		return false
	}
}
