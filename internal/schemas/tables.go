package schemas

import (
	"github.com/zjrosen/benchschema/internal/domain/registry"
)

func datasheet() *registry.RecordSpec {
	return registry.NewBuilder(Datasheet).
		Version(DefaultVersion).
		Description("Prover datasheet measurements").
		Fields(
			registry.Number("cycles").Describe("segment size in cycles"),
			registry.Number("duration").Describe("wall time in nanoseconds"),
			registry.String("hashfn").Describe("hash function used for the seal, e.g. sha-256 or poseidon2"),
			registry.String("name").Describe("benchmark name"),
			registry.Number("ram").Describe("peak memory in bytes"),
			registry.Number("seal").Describe("seal size in bytes"),
			registry.Number("throughput").Describe("cycles per second"),
			registry.Number("total_cycles").Describe("total cycles including paging and padding"),
			registry.Number("user_cycles").Describe("cycles spent executing guest instructions"),
		).
		MustBuild()
}

func cratesIOValidation() *registry.RecordSpec {
	return registry.NewBuilder(CratesIOValidation).
		Version(DefaultVersion).
		Description("Build and run status of popular crates inside the guest").
		Fields(
			registry.String("name").Describe("crate name"),
			registry.String("version").Describe("crate version"),
			registry.Enum("status", CrateStatuses...).Describe("outcome of building and running the crate"),
			registry.String("custom_profile").Describe("profile overrides used for the build"),
			registry.Optional(registry.String("build_errors")).Describe("compiler output when the build failed"),
		).
		MustBuild()
}
