package seed

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/pizzabot/pizzabot/internal/catalog"
)

type parquetMenuItem struct {
	ID          int64   `parquet:"id"`
	Name        string  `parquet:"name"`
	Size        string  `parquet:"tamanho"`
	Price       float64 `parquet:"preco"`
	Ingredients string  `parquet:"ingredientes"`
}

func EncodeParquet(items []catalog.MenuItem) ([]byte, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("menu items are required")
	}

	rows := make([]parquetMenuItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, parquetMenuItem{
			ID:          item.ID,
			Name:        item.Name,
			Size:        string(item.Size),
			Price:       item.Price,
			Ingredients: item.Ingredients,
		})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetMenuItem](buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeParquet(data []byte) ([]catalog.MenuItem, error) {
	rows, err := parquet.Read[parquetMenuItem](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parquet snapshot has no rows")
	}

	items := make([]catalog.MenuItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, catalog.MenuItem{
			ID:          row.ID,
			Name:        row.Name,
			Size:        catalog.Size(row.Size),
			Price:       row.Price,
			Ingredients: row.Ingredients,
		})
	}
	if err := catalog.ValidateItems(items); err != nil {
		return nil, fmt.Errorf("invalid parquet snapshot: %w", err)
	}
	return items, nil
}
