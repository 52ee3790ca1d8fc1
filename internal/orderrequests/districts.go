package orderrequests

import "strings"

// Known hub → district assignments for the pilot network. The hub field is
// free text, so matching is case-insensitive on the canonical hub names.
var hubDistricts = map[string]string{
	"kumily cardamom hub":        "Idukki",
	"munnar tea hub":             "Idukki",
	"wayanad coffee hub":         "Wayanad",
	"kalpetta spice hub":         "Wayanad",
	"kochi pepper hub":           "Ernakulam",
	"aluva vegetable hub":        "Ernakulam",
	"palakkad rice hub":          "Palakkad",
	"kozhikode coconut hub":      "Kozhikode",
	"thrissur banana hub":        "Thrissur",
	"kottayam rubber hub":        "Kottayam",
	"trivandrum tapioca hub":     "Thiruvananthapuram",
	"alappuzha paddy hub":        "Alappuzha",
	"kannur cashew hub":          "Kannur",
	"kollam cashew hub":          "Kollam",
	"malappuram arecanut hub":    "Malappuram",
	"pathanamthitta ginger hub":  "Pathanamthitta",
	"kasaragod arecanut hub":     "Kasaragod",
	"idukki cardamom collective": "Idukki",
}

// UnassignedDistrict groups requests whose hub could not be resolved.
const UnassignedDistrict = "Unassigned"

// ResolveDistrict derives the hub district used for network aggregation. An
// explicit district wins; otherwise the hub directory is consulted.
func ResolveDistrict(preferredHub, explicit string) string {
	if district := strings.TrimSpace(explicit); district != "" {
		return district
	}
	if district, ok := hubDistricts[strings.ToLower(strings.TrimSpace(preferredHub))]; ok {
		return district
	}
	return UnassignedDistrict
}
