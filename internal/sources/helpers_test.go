package sources

const testCatalog = `{
  "soundBanks": [
    {"id": 1, "shortName": "Init", "path": "Init.bnk", "type": "User"},
    {"id": 2, "shortName": "Weapons", "path": "Weapons.bnk", "type": "User"}
  ],
  "media": [
    {"id": 10, "shortName": "Gunshot.wav", "path": "Media/10.wem", "soundBankId": 2, "location": "Loose"}
  ],
  "events": [
    {"id": 5, "name": "Play_Gunshot", "soundBanks": [{"id": 2}], "media": [10]}
  ]
}`

// testCatalogHash is the SHA-256 of testCatalog
var testCatalogHash = hashDocument([]byte(testCatalog))
