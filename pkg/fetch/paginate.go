package fetch

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// PageOptions control one pagination traversal. Convention and PageSize
// normally come straight from the source Config; MaxRecords bounds worst-case
// run time (0 means unbounded).
type PageOptions struct {
	Convention string
	PageSize   int
	MaxRecords int
	CacheTTL   time.Duration
}

// PageFunc processes one fetched page and reports how many records it
// contained. Returning an error aborts the traversal past that point;
// already-processed pages are not rolled back.
type PageFunc func(payload *Payload, page int) (int, error)

// Paginate walks the paginated endpoint at path, invoking fn once per page.
// Traversal ends when the source returns a short or empty page, the
// MaxRecords cap is reached, fn fails, or ctx is cancelled.
func (c *Client) Paginate(ctx context.Context, path string, params url.Values, opts PageOptions, fn PageFunc) error {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.Convention == "" {
		opts.Convention = PaginationPage
	}

	total := 0
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageParams := clone(params)
		applyConvention(pageParams, opts, page)

		payload, err := c.Get(ctx, path, pageParams, opts.CacheTTL)
		if err != nil {
			return err
		}

		count, err := fn(payload, page)
		if err != nil {
			return err
		}

		total += count
		if count == 0 || count < opts.PageSize {
			return nil
		}
		if opts.MaxRecords > 0 && total >= opts.MaxRecords {
			c.logger.Info("record cap reached", "path", path, "cap", opts.MaxRecords)
			return nil
		}
	}
}

func applyConvention(params url.Values, opts PageOptions, page int) {
	switch opts.Convention {
	case PaginationOffset:
		params.Set("offset", strconv.Itoa((page-1)*opts.PageSize))
		params.Set("limit", strconv.Itoa(opts.PageSize))
	default:
		params.Set("pagina", strconv.Itoa(page))
		params.Set("itens", strconv.Itoa(opts.PageSize))
	}
}

func clone(params url.Values) url.Values {
	cloned := make(url.Values, len(params))
	for k, v := range params {
		cloned[k] = append([]string(nil), v...)
	}
	return cloned
}
