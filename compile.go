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
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/model"
)

// FinalizeRecordRequest completes a record request once every leg has
// settled and recompiles the patient's record.
//
// The completion itself is a guarded UPDATE, so calling this after
// every attribution is safe: only the call that settles the last leg
// flips the request, and only that call recompiles and notifies.
func (c *Chartfax) FinalizeRecordRequest(ctx context.Context, requestID string) error {
	ctx, span := tracer.Start(ctx, "Finalizing Record Request")
	defer span.End()

	completed, err := c.datasource.CompleteRecordRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if !completed {
		return nil
	}

	request, err := c.datasource.GetRecordRequest(ctx, requestID)
	if err != nil {
		return err
	}

	compiledPath, err := c.CompilePatientRecord(ctx, request.PatientID)
	if err != nil {
		log.Printf("Error compiling record for patient %s: %v", request.PatientID, err)
	}

	if err := SendWebhook(NewWebhook{Event: EventRequestComplete, Payload: map[string]interface{}{
		"request":       request,
		"compiled_path": compiledPath,
	}}); err != nil {
		log.Printf("Error sending webhook: %v", err)
	}
	return nil
}

// SortFaxesForCompilation orders a patient's documents for the compiled
// record. Documents sort by their clinical date, the encounter date
// when extraction found one and the receipt time otherwise, with
// receipt time breaking date ties. The sort is stable so documents
// identical on both fall back to insertion order.
func SortFaxesForCompilation(faxes []*model.InboundFax) {
	sort.SliceStable(faxes, func(i, j int) bool {
		di, _ := faxes[i].DocumentDate()
		dj, _ := faxes[j].DocumentDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return faxes[i].ReceivedAt.Before(faxes[j].ReceivedAt)
	})
}

// CompilePatientRecord merges every document matched to a patient into
// a single chronological PDF and returns its path.
//
// Compilation is cumulative: each run rebuilds the full record from
// everything on file, so a late-arriving fax just means the next run
// produces a longer document under the same name.
func (c *Chartfax) CompilePatientRecord(ctx context.Context, patientID string) (string, error) {
	ctx, span := tracer.Start(ctx, "Compiling Patient Record")
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return "", err
	}

	faxes, err := c.datasource.GetFaxesByPatient(ctx, patientID)
	if err != nil {
		return "", err
	}

	var documents []*model.InboundFax
	for _, fax := range faxes {
		if fax.HasDocument() {
			documents = append(documents, fax)
		}
	}
	if len(documents) == 0 {
		return "", apierror.NewAPIError(apierror.ErrNotFound, "No documents on file for patient: "+patientID, nil)
	}

	SortFaxesForCompilation(documents)

	inFiles := make([]string, 0, len(documents))
	for _, fax := range documents {
		inFiles = append(inFiles, fax.FilePath)
	}

	if err := os.MkdirAll(cnf.Storage.CompiledDir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(cnf.Storage.CompiledDir, patientID+".pdf")
	if err := api.MergeCreateFile(inFiles, outPath, false, nil); err != nil {
		return "", err
	}
	return outPath, nil
}
