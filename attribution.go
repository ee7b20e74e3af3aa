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
	"github.com/chartfax/chartfax/internal/extraction"
	"github.com/chartfax/chartfax/internal/fuzzy"
	"github.com/chartfax/chartfax/model"
)

// SelectLegCandidates orders the open outbound legs an inbound fax
// could be answering.
//
// The sending fax line is the strongest signal: legs whose provider fax
// number shares the last ten digits of the sender come first, and when
// any exist the weaker facility-name pass is skipped entirely. Failing
// that, facility names pulled from the document text are scored against
// each leg's provider name and legs clearing the threshold are kept in
// their original order.
func SelectLegCandidates(fax *model.InboundFax, legs []*model.ProviderRequest, threshold int) []*model.ProviderRequest {
	var byFaxLine []*model.ProviderRequest
	for _, leg := range legs {
		if model.SameFaxLine(fax.FromNumber, leg.ProviderFaxNumber) {
			byFaxLine = append(byFaxLine, leg)
		}
	}
	if len(byFaxLine) > 0 {
		return byFaxLine
	}

	facilities := extraction.ExtractFacilityNames(fax.ExtractedText)
	if len(facilities) == 0 {
		return nil
	}

	var byFacility []*model.ProviderRequest
	for _, leg := range legs {
		for _, facility := range facilities {
			if fuzzy.BestScore(facility, leg.ProviderName) >= threshold {
				byFacility = append(byFacility, leg)
				break
			}
		}
	}
	return byFacility
}

// AttributeFaxResponse attributes an inbound fax to the outbound leg it
// answers, if any.
//
// Candidates are tried in order and the first compare-and-set win takes
// the fax; a leg settled by a concurrent attribution simply falls
// through to the next candidate. A winning attribution triggers the
// completion check on the parent request. No candidate winning is not
// an error, unsolicited faxes are expected traffic.
func (c *Chartfax) AttributeFaxResponse(ctx context.Context, fax *model.InboundFax) (*model.ProviderRequest, error) {
	ctx, span := tracer.Start(ctx, "Attributing Fax To Request Leg")
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	legs, err := c.datasource.GetOpenProviderRequests(ctx)
	if err != nil {
		return nil, err
	}

	candidates := SelectLegCandidates(fax, legs, cnf.Matching.ProviderThreshold)
	for _, leg := range candidates {
		won, err := c.datasource.MarkResponseReceived(ctx, leg.ProviderRequestID, fax.FaxID)
		if err != nil {
			return nil, err
		}
		if !won {
			continue
		}
		if err := c.datasource.LinkFaxProviderRequest(ctx, fax.FaxID, leg.ProviderRequestID); err != nil {
			return nil, err
		}
		fax.ProviderRequestID = leg.ProviderRequestID
		if err := c.FinalizeRecordRequest(ctx, leg.RequestID); err != nil {
			log.Printf("Error finalizing request %s: %v", leg.RequestID, err)
		}
		return leg, nil
	}
	return nil, nil
}
