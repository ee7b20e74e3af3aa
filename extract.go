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
	"strings"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/internal/extraction"
	"github.com/chartfax/chartfax/internal/notification"
	"github.com/chartfax/chartfax/model"
)

// ExtractFax runs OCR over a downloaded document and parses the patient
// demographics and encounter date out of the text.
//
// The raw text and parsed fields are persisted together, so matching
// and any later reprocess read from the database instead of re-running
// OCR. An OCR failure parks the fax in extraction_failed; parse misses
// are not failures, the fax simply advances with empty fields and lets
// matching decide what to do with it.
func (c *Chartfax) ExtractFax(ctx context.Context, faxID string) (*model.InboundFax, error) {
	ctx, span := tracer.Start(ctx, "Extracting Fax Content")
	defer span.End()

	fax, err := c.datasource.GetFax(ctx, faxID)
	if err != nil {
		return nil, err
	}
	if fax.FilePath == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Fax has no downloaded document: "+faxID, nil)
	}

	text, err := c.extractor.ExtractText(ctx, fax.FilePath)
	if err != nil {
		if statusErr := c.datasource.UpdateFaxStatus(ctx, fax.FaxID, model.StatusExtractionFailed); statusErr != nil {
			log.Printf("Error marking fax %s extraction_failed: %v", fax.FaxID, statusErr)
		}
		notification.NotifyError(fmt.Errorf("extraction failed for fax %s: %w", fax.FaxID, err))
		return nil, logAndRecordError(span, "fax text extraction failed: ", err)
	}

	demographics := extraction.ParseDemographics(text)
	encounterDate := extraction.ParseEncounterDate(text)
	patientName := strings.TrimSpace(demographics.FirstName + " " + demographics.LastName)

	if err := c.datasource.RecordFaxExtraction(ctx, fax.FaxID, text, patientName, demographics.DOB, encounterDate); err != nil {
		return nil, err
	}

	fax.ExtractedText = text
	fax.PatientName = patientName
	fax.PatientDOB = demographics.DOB
	fax.EncounterDate = encounterDate
	fax.Status = model.StatusExtracted
	return fax, nil
}
