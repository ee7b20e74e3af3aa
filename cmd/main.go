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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chartfax/chartfax"
	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/database"
	"github.com/chartfax/chartfax/internal/notification"
)

// Chartfax represents the CLI application, encapsulating the root Cobra command.
type Chartfax struct {
	cmd *cobra.Command
}

// chartfaxInstance holds the running service and its configuration so
// subcommands share one initialized instance.
type chartfaxInstance struct {
	service *chartfax.Chartfax
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads configuration and initializes the service before any
// subcommand executes.
func preRun(app *chartfaxInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("chartfax.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newService, err := setupChartfax(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.service = newService
		app.cnf = cnf

		return nil
	}
}

// setupChartfax connects to the data source and builds the service.
func setupChartfax(cfg *config.Configuration) (*chartfax.Chartfax, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newService, err := chartfax.NewChartfax(db)
	if err != nil {
		return nil, fmt.Errorf("error creating chartfax: %v", err)
	}
	return newService, nil
}

// NewCLI assembles the root command and its subcommands.
func NewCLI() *Chartfax {
	var configFile string
	b := &chartfaxInstance{}

	var rootCmd = &cobra.Command{
		Use:   "chartfax",
		Short: "Medical records fax pipeline",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./chartfax.json", "Configuration file for chartfax")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))
	rootCmd.AddCommand(pollCommands(b))

	return &Chartfax{cmd: rootCmd}
}

func (w Chartfax) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
