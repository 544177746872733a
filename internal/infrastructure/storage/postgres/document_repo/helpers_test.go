package document_repo

import "time"

var receiptTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
