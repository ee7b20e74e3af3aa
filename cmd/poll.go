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

package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"
)

// pollCommands defines the "poll" command. Polling is the safety net
// for inbound faxes whose webhooks never arrived; run it on a cron.
func pollCommands(b *chartfaxInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "poll carriers for inbound faxes missed by webhooks",
		Run: func(cmd *cobra.Command, args []string) {
			claimed, err := b.service.PollInboundFaxes(context.Background())
			if err != nil {
				log.Fatal(err)
			}
			log.Printf(" [*] Poll complete, %d new faxes claimed", claimed)
		},
	}

	return cmd
}
