package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"library-gateway/application/resilience"
	"library-gateway/domain"
)

// LibraryPage is the Library service's paginated list of branches. Paging
// semantics belong to the downstream service; the gateway forwards the
// page untouched.
type LibraryPage struct {
	Page          int              `json:"page"`
	PageSize      int              `json:"pageSize"`
	TotalElements int              `json:"totalElements"`
	Items         []domain.Library `json:"items"`
}

// LibraryBookPage is the Library service's paginated list of books held by
// one branch.
type LibraryBookPage struct {
	Page          int           `json:"page"`
	PageSize      int           `json:"pageSize"`
	TotalElements int           `json:"totalElements"`
	Items         []domain.Book `json:"items"`
}

// PageQuery carries pass-through pagination parameters
type PageQuery struct {
	Page    *int
	Size    *int
	ShowAll *bool
}

func (p PageQuery) apply(query url.Values) {
	if p.Page != nil {
		query.Set("page", strconv.Itoa(*p.Page))
	}
	if p.Size != nil {
		query.Set("size", strconv.Itoa(*p.Size))
	}
	if p.ShowAll != nil {
		query.Set("showAll", strconv.FormatBool(*p.ShowAll))
	}
}

// LibraryClient calls the Library service
type LibraryClient struct {
	baseClient
}

// NewLibraryClient creates a Library service client
func NewLibraryClient(config Config, breaker *resilience.Breaker, logger *zap.Logger) *LibraryClient {
	return &LibraryClient{
		baseClient: newBaseClient(ServiceLibrary, config.LibraryBaseURL, config.RequestTimeout, breaker, logger),
	}
}

// GetLibraries lists branches, optionally filtered by city
func (c *LibraryClient) GetLibraries(ctx context.Context, city string, page PageQuery) (LibraryPage, error) {
	query := url.Values{}
	if city != "" {
		query.Set("city", city)
	}
	page.apply(query)

	var out LibraryPage
	err := c.call(ctx, http.MethodGet, "/Library/libraries", query, "", nil, &out)
	return out, err
}

// GetLibraryBooks lists the books held by one branch
func (c *LibraryClient) GetLibraryBooks(ctx context.Context, libraryUID string, page PageQuery) (LibraryBookPage, error) {
	query := url.Values{}
	page.apply(query)

	var out LibraryBookPage
	err := c.call(ctx, http.MethodGet, "/Library/libraries/"+libraryUID+"/books", query, "", nil, &out)
	return out, err
}

// GetBook fetches a book's display info
func (c *LibraryClient) GetBook(ctx context.Context, bookUID string) (domain.Book, error) {
	query := url.Values{"bookId": {bookUID}}
	var book domain.Book
	err := c.call(ctx, http.MethodGet, "/Library/GetBookByUuid", query, "", nil, &book)
	return book, err
}

// GetLibrary fetches a branch's display info
func (c *LibraryClient) GetLibrary(ctx context.Context, libraryUID string) (domain.Library, error) {
	query := url.Values{"libid": {libraryUID}}
	var library domain.Library
	err := c.call(ctx, http.MethodGet, "/Library/GetLibraryByUuid", query, "", nil, &library)
	return library, err
}

// GetBookCondition fetches the recorded condition of a book
func (c *LibraryClient) GetBookCondition(ctx context.Context, bookUID string) (domain.Book, error) {
	query := url.Values{"bookId": {bookUID}}
	var book domain.Book
	err := c.call(ctx, http.MethodGet, "/Library/GetBookConditionByUuid", query, "", nil, &book)
	return book, err
}

// ChangeCondition updates the recorded condition of a book
func (c *LibraryClient) ChangeCondition(ctx context.Context, bookUID string, condition domain.BookCondition) error {
	query := url.Values{
		"bookId":    {bookUID},
		"condition": {string(condition)},
	}
	return c.call(ctx, http.MethodPut, "/Library/changeCondition", query, "", nil, nil)
}

// ChangeCount adjusts a book's available count at a branch by delta
func (c *LibraryClient) ChangeCount(ctx context.Context, bookUID, libraryUID string, delta int) error {
	query := url.Values{
		"bookId": {bookUID},
		"libId":  {libraryUID},
		"delta":  {strconv.Itoa(delta)},
	}
	return c.call(ctx, http.MethodPost, "/Library/changeCount", query, "", nil, nil)
}
