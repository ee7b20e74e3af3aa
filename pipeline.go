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
	"log"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/model"
)

// ProcessFax drives an inbound fax through the pipeline from whatever
// stage its status says it is in.
//
// Every stage rereads and rewrites the fax row, so a crash between
// stages loses nothing: the queue redelivers the task and processing
// resumes at the recorded status. Stage failures park the fax in a
// failed status and surface the error to the queue for retry.
func (c *Chartfax) ProcessFax(ctx context.Context, faxID string) (*model.InboundFax, error) {
	ctx, span := tracer.Start(ctx, "Processing Fax")
	defer span.End()

	fax, err := c.datasource.GetFax(ctx, faxID)
	if err != nil {
		return nil, err
	}

	for {
		switch fax.Status {
		case model.StatusReceived:
			fax, err = c.DownloadFax(ctx, fax.FaxID)
		case model.StatusDownloaded:
			fax, err = c.ExtractFax(ctx, fax.FaxID)
		case model.StatusExtracted:
			fax, err = c.MatchFaxPatient(ctx, fax.FaxID)
		case model.StatusMatched, model.StatusUnmatched:
			if _, err := c.AttributeFaxResponse(ctx, fax); err != nil {
				return fax, err
			}
			if err := c.datasource.UpdateFaxStatus(ctx, fax.FaxID, model.StatusProcessed); err != nil {
				return fax, err
			}
			fax.Status = model.StatusProcessed
		default:
			// processed or parked in a failed status
			return fax, nil
		}
		if err != nil {
			return fax, err
		}
	}
}

// ReprocessFax rewinds a fax to the stage before its failure and runs
// the pipeline again.
//
// download_failed rewinds to received and extraction_failed to
// downloaded. An unmatched fax reruns matching in place, which is how
// a document matched after its patient was registered late gets picked
// up. Faxes mid-pipeline or already processed are rejected.
func (c *Chartfax) ReprocessFax(ctx context.Context, faxID string) (*model.InboundFax, error) {
	ctx, span := tracer.Start(ctx, "Reprocessing Fax")
	defer span.End()

	fax, err := c.datasource.GetFax(ctx, faxID)
	if err != nil {
		return nil, err
	}

	var rewound string
	switch fax.Status {
	case model.StatusDownloadFailed:
		rewound = model.StatusReceived
	case model.StatusExtractionFailed:
		rewound = model.StatusDownloaded
	case model.StatusUnmatched:
		rewound = model.StatusExtracted
	default:
		return nil, apierror.NewAPIError(apierror.ErrConflict, "Fax is not in a reprocessable status: "+fax.Status, nil)
	}

	if err := c.datasource.UpdateFaxStatus(ctx, fax.FaxID, rewound); err != nil {
		return nil, err
	}
	fax.Status = rewound
	log.Printf("Reprocessing fax %s from %s", fax.FaxID, rewound)
	return c.ProcessFax(ctx, fax.FaxID)
}
