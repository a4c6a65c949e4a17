package proposals

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/archive"
)

const documentCategory = "proposals/documents"

// captureDocument downloads, measures, and archives the proposal's full text.
// Document capture is best effort: any failure is logged and the pass moves
// on, the proposal row itself is already committed. A current document record
// whose archived blob went missing is re-captured.
func (c *Collector) captureDocument(ctx context.Context, report *ingest.Report, proposal Proposal) {
	if proposal.FullTextURL == "" {
		return
	}

	stored, err := c.repo.FindByExternalID(ctx, proposal.ExternalID)
	if err != nil {
		c.logger.Warn("proposal lookup failed", "proposal", proposal.ExternalID, "error", err)
		return
	}
	proposal.ID = stored.ID

	loc := archive.Locator{
		Category: documentCategory,
		Period:   strconv.Itoa(proposal.Year),
		Identity: fmt.Sprintf("doc-%d", proposal.ExternalID),
	}

	existing, err := c.repo.FindDocument(ctx, proposal.ID)
	if err != nil && !errors.Is(err, ErrDocumentNotFound) {
		c.logger.Warn("document lookup failed", "proposal", proposal.ExternalID, "error", err)
		return
	}
	if existing != nil && existing.URL == proposal.FullTextURL {
		archived, err := c.store.Exists(ctx, loc)
		if err != nil {
			c.logger.Warn("document existence check failed", "proposal", proposal.ExternalID, "error", err)
			return
		}
		if archived {
			return
		}
		c.logger.Warn("archived document missing", "proposal", proposal.ExternalID, "key", loc.Key())
	}

	payload, err := c.client.Download(ctx, proposal.FullTextURL)
	if err != nil {
		c.logger.Warn("document download failed", "proposal", proposal.ExternalID, "error", err)
		return
	}

	pages, err := api.PageCount(bytes.NewReader(payload.Body), nil)
	if err != nil {
		c.logger.Warn("document unreadable", "proposal", proposal.ExternalID, "error", err)
		return
	}

	locator, err := c.store.Store(ctx, loc.Category, loc.Period, loc.Identity, payload.Body)
	if err != nil {
		c.logger.Warn("document archive failed", "proposal", proposal.ExternalID, "error", err)
		return
	}
	report.RecordArchived()

	_, err = c.repo.UpsertDocument(ctx, Document{
		ProposalID: proposal.ID,
		URL:        proposal.FullTextURL,
		PageCount:  pages,
		ArchiveKey: locator.Key(),
	})
	if err != nil {
		c.logger.Warn("document record failed", "proposal", proposal.ExternalID, "error", err)
		return
	}

	c.logger.Debug("document captured", "proposal", proposal.ExternalID, "pages", pages)
}
