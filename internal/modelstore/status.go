package modelstore

import (
	"fmt"

	"github.com/codiehq/codesight/schema"
)

// PrintStoreStatus prints model store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Artifacts: %d\n", status.TotalArtifacts)
	fmt.Printf("Active Models: %d\n", status.ActiveModels)
	if status.TotalArtifacts > 0 {
		fmt.Printf("Last Trained: %s\n", status.LastTrainedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Total Training Runs: %d\n", status.TotalRuns)
	fmt.Println("Table Sizes:")
	for table, size := range status.TableSizes {
		fmt.Printf("  %s: %d rows\n", table, size)
	}
}

// PrintRegistryStatus prints the in-memory registry state of a running engine.
func PrintRegistryStatus(status schema.RegistryStatus) {
	fmt.Printf("Generation: %s (seq %d)\n", status.GenerationID, status.GenerationSeq)
	fmt.Printf("Created: %s\n", status.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Feature Schema Version: %d\n", status.SchemaVersion)
	fmt.Println("Models:")
	for _, name := range schema.AllModelNames {
		rec, ok := status.Records[name]
		if !ok {
			fmt.Printf("  %s: not loaded\n", name)
			continue
		}
		fmt.Printf("  %s: v%d %s (accuracy %.3f)\n", rec.Name, rec.Version, rec.Status, rec.Accuracy)
	}
}
