/*
Copyright 2024 Chartfax Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package chartfax

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/internal/carrier"
	"github.com/chartfax/chartfax/internal/notification"
	"github.com/chartfax/chartfax/model"
)

// DownloadFax fetches the fax document from its carrier and stores it
// in the inbox directory.
//
// Transient carrier failures, including the document not being ready
// yet, retry with exponential backoff up to the configured attempt
// limit. A permanent carrier error or an exhausted retry limit parks
// the fax in download_failed; it stays claimed so a reprocess can pick
// it back up once the carrier recovers.
func (c *Chartfax) DownloadFax(ctx context.Context, faxID string) (*model.InboundFax, error) {
	ctx, span := tracer.Start(ctx, "Downloading Fax Document")
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	fax, err := c.datasource.GetFax(ctx, faxID)
	if err != nil {
		return nil, err
	}
	if fax.HasDocument() {
		return fax, nil
	}

	client, err := c.Carrier(fax.Carrier)
	if err != nil {
		return nil, err
	}

	var document []byte
	operation := func() error {
		data, err := client.Download(ctx, fax.JobID, fax.TransactionID)
		if err != nil {
			if carrier.IsTransient(err) {
				log.Printf("Transient download failure for fax %s, will retry: %v", fax.FaxID, err)
				return err
			}
			return backoff.Permanent(err)
		}
		document = data
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(cnf.Carriers.MaxRetries))
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		if statusErr := c.datasource.UpdateFaxStatus(ctx, fax.FaxID, model.StatusDownloadFailed); statusErr != nil {
			log.Printf("Error marking fax %s download_failed: %v", fax.FaxID, statusErr)
		}
		notification.NotifyError(fmt.Errorf("download failed for fax %s: %w", fax.FaxID, err))
		return nil, logAndRecordError(span, "fax document download failed: ", err)
	}

	filePath, err := c.storeDocument(cnf.Storage.InboxDir, fax.FaxID, document)
	if err != nil {
		return nil, err
	}

	pageCount, err := api.PageCountFile(filePath)
	if err != nil {
		log.Printf("Error counting pages for fax %s: %v", fax.FaxID, err)
		pageCount = 0
	}

	if err := c.datasource.MarkFaxDownloaded(ctx, fax.FaxID, filePath, pageCount); err != nil {
		return nil, err
	}
	fax.FilePath = filePath
	fax.PageCount = pageCount
	fax.Status = model.StatusDownloaded
	return fax, nil
}

func (c *Chartfax) storeDocument(dir, faxID string, document []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, faxID+".pdf")
	if err := os.WriteFile(filePath, document, 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}
