package reconcile

// Child collection names shared by the policy tables and services.
const (
	CollectionLinks  = "links"
	CollectionImages = "images"
	CollectionMedia  = "media"
	CollectionSkills = "skills"
)

// Per-entity policy tables. Sync behavior is configuration, not scattered
// conditionals: links and skills are fully replaced whenever supplied, while
// blob-backed collections only ever grow.
var (
	PostPolicies = map[string]Policy{
		CollectionLinks:  PolicyReplace,
		CollectionImages: PolicyAppend,
	}

	ProjectPolicies = map[string]Policy{
		CollectionLinks:  PolicyReplace,
		CollectionSkills: PolicyReplace,
		CollectionMedia:  PolicyAppend,
	}

	ExperiencePolicies = map[string]Policy{
		CollectionLinks:  PolicyReplace,
		CollectionSkills: PolicyReplace,
	}
)
