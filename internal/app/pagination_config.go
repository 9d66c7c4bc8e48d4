package app

const (
	defaultPerPage = 10
	defaultMaxPage = 100
)

// Normalised returns the pagination bounds with fallbacks applied for unset or inconsistent values.
func (c PaginationConfig) Normalised() PaginationConfig {
	out := c
	if out.DefaultPerPage <= 0 {
		out.DefaultPerPage = defaultPerPage
	}
	if out.MaxPerPage <= 0 {
		out.MaxPerPage = defaultMaxPage
	}
	if out.DefaultPerPage > out.MaxPerPage {
		out.DefaultPerPage = out.MaxPerPage
	}
	return out
}
