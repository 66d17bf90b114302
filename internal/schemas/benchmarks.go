package schemas

import (
	"github.com/zjrosen/benchschema/internal/domain/registry"
)

// Application benchmark reports are written as CSV, so every column is a string.

func applicationsMain() *registry.RecordSpec {
	return registry.NewBuilder(ApplicationsBenchmarks).
		Version("main").
		Description("Application benchmarks on the development branch").
		Fields(
			registry.String("name").Describe("benchmark job name"),
			registry.String("size").Describe("input size of the job"),
			registry.String("speed").Describe("proving throughput"),
			registry.String("total_duration").Describe("wall time of execute plus prove"),
			registry.String("total_cycles").Describe("total cycles including paging and padding"),
			registry.String("user_cycles").Describe("cycles spent executing guest instructions"),
			registry.String("proof_bytes").Describe("size of the receipt seal"),
		).
		MustBuild()
}

func applicationsRelease10() *registry.RecordSpec {
	return registry.NewBuilder(ApplicationsBenchmarks).
		Version("release-1.0").
		Description("Application benchmarks for the 1.0 release").
		Fields(
			registry.String("name").Describe("benchmark job name"),
			registry.String("size").Describe("input size of the job"),
			registry.String("speed").Describe("proving throughput"),
			registry.String("total_duration").Describe("wall time of execute plus prove"),
			registry.String("total_cycles").Describe("total cycles including paging and padding"),
			registry.String("user_cycles").Describe("cycles spent executing guest instructions"),
			registry.String("proof_bytes").Describe("size of the receipt seal"),
		).
		MustBuild()
}

func applicationsRelease021() *registry.RecordSpec {
	return registry.NewBuilder(ApplicationsBenchmarks).
		Version("release-0.21").
		Description("Application benchmarks for the 0.21 release").
		Fields(
			registry.String("job_name").Describe("benchmark job name"),
			registry.String("job_size").Describe("number of input words"),
			registry.String("exec_duration").Describe("time to execute without proving"),
			registry.String("proof_duration").Describe("time to prove"),
			registry.String("total_duration").Describe("wall time of execute plus prove"),
			registry.String("verify_duration").Describe("time to verify the receipt"),
			registry.String("insn_cycles").Describe("cycles spent executing guest instructions"),
			registry.String("prove_cycles").Describe("total cycles proven"),
			registry.String("proof_bytes").Describe("size of the receipt seal"),
		).
		MustBuild()
}
