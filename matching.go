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

	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/internal/fuzzy"
	"github.com/chartfax/chartfax/model"
)

// SelectPatientMatch picks the patient a fax belongs to from the
// candidates sharing its date of birth.
//
// The date of birth anchors the match: without one there is no
// candidate set and no match. With exactly one candidate and no parsed
// name the match is accepted at reduced confidence, since a unique DOB
// hit is strong evidence on its own. Otherwise the parsed name is
// scored against each candidate and the best score at or above the
// threshold wins; an exact score tie keeps the earliest candidate,
// which is deterministic because candidates arrive ordered by
// registration.
func SelectPatientMatch(fax *model.InboundFax, candidates []model.Patient, threshold int) *model.PatientMatch {
	if fax.PatientDOB == nil || len(candidates) == 0 {
		return nil
	}

	if fax.PatientName == "" {
		if len(candidates) == 1 {
			return &model.PatientMatch{PatientID: candidates[0].PatientID, Confidence: 0.9}
		}
		return nil
	}

	var best *model.PatientMatch
	bestScore := 0
	for _, candidate := range candidates {
		score := fuzzy.BestScore(fax.PatientName, candidate.FullName())
		if score >= threshold && score > bestScore {
			bestScore = score
			best = &model.PatientMatch{PatientID: candidate.PatientID, Confidence: float64(score) / 100}
		}
	}
	return best
}

// MatchFaxPatient resolves the extracted demographics on a fax to a
// patient record. A winning match links the patient and advances the
// fax to matched; anything else advances it to unmatched for manual
// review. Both outcomes are terminal for this stage, so rerunning it
// on the same fax is harmless.
func (c *Chartfax) MatchFaxPatient(ctx context.Context, faxID string) (*model.InboundFax, error) {
	ctx, span := tracer.Start(ctx, "Matching Fax To Patient")
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	fax, err := c.datasource.GetFax(ctx, faxID)
	if err != nil {
		return nil, err
	}

	var candidates []model.Patient
	if fax.PatientDOB != nil {
		candidates, err = c.datasource.GetPatientsByDOB(ctx, *fax.PatientDOB)
		if err != nil {
			return nil, err
		}
	}

	match := SelectPatientMatch(fax, candidates, cnf.Matching.PatientThreshold)
	if match == nil {
		if err := c.datasource.UpdateFaxStatus(ctx, fax.FaxID, model.StatusUnmatched); err != nil {
			return nil, err
		}
		fax.Status = model.StatusUnmatched
		if err := SendWebhook(NewWebhook{Event: EventFaxUnmatched, Payload: fax}); err != nil {
			log.Printf("Error sending webhook: %v", err)
		}
		return fax, nil
	}

	if err := c.datasource.LinkFaxPatient(ctx, fax.FaxID, match.PatientID, match.Confidence); err != nil {
		return nil, err
	}
	fax.MatchedPatientID = match.PatientID
	fax.MatchConfidence = match.Confidence
	fax.Status = model.StatusMatched
	if err := SendWebhook(NewWebhook{Event: EventFaxMatched, Payload: fax}); err != nil {
		log.Printf("Error sending webhook: %v", err)
	}
	return fax, nil
}
