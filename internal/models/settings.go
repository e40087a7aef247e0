package models

type Settings struct {
	Timezone string `json:"timezone"`
}
