package seed

import "github.com/pizzabot/pizzabot/internal/catalog"

// Builtin returns the house menu. Each call returns a fresh slice.
func Builtin() []catalog.MenuItem {
	return []catalog.MenuItem{
		{ID: 1, Name: "Margherita", Size: catalog.SizeSmall, Price: 30.99, Ingredients: "Tomate, Mozzarella, Manjericão"},
		{ID: 2, Name: "Pepperoni", Size: catalog.SizeMedium, Price: 20.99, Ingredients: "Pepperoni, Mozzarella"},
		{ID: 3, Name: "Quatro Queijos", Size: catalog.SizeLarge, Price: 25.99, Ingredients: "Mozzarella, Cheddar, Parmesão, Gorgonzola"},
		{ID: 4, Name: "Mussarela", Size: catalog.SizeMedium, Price: 27.99, Ingredients: "Mussarela, rodelas de tomate e orégano"},
		{ID: 5, Name: "Escarola", Size: catalog.SizeSmall, Price: 29.50, Ingredients: "Escarola refogada, mussarela e orégano"},
		{ID: 6, Name: "Marguerita", Size: catalog.SizeLarge, Price: 32.99, Ingredients: "Mussarela, rodelas de tomate e manjericão"},
		{ID: 7, Name: "Atum", Size: catalog.SizeMedium, Price: 34.50, Ingredients: "Mussarela, atum e cebola e orégano"},
		{ID: 8, Name: "Romana", Size: catalog.SizeLarge, Price: 36.99, Ingredients: "Mussarela aliche e queijo parmesão e orégano"},
		{ID: 9, Name: "Calabresa", Size: catalog.SizeSmall, Price: 28.50, Ingredients: "Mussarela, linguiça calabresa e cebola"},
		{ID: 10, Name: "Napolitana", Size: catalog.SizeMedium, Price: 31.99, Ingredients: "Mussarela, rodelas de tomate, queijo parmesão e orégano"},
		{ID: 11, Name: "Brócolis", Size: catalog.SizeLarge, Price: 33.50, Ingredients: "Brócolis refogado coberto com mussarela e alho"},
		{ID: 12, Name: "Siciliana", Size: catalog.SizeSmall, Price: 35.99, Ingredients: "Mussarela, bacon e champignon ao molho rose"},
		{ID: 13, Name: "Lombinho", Size: catalog.SizeMedium, Price: 30.50, Ingredients: "Mussarela, lombo defumado e cebola"},
		{ID: 14, Name: "Portuguesa", Size: catalog.SizeLarge, Price: 38.99, Ingredients: "Mussarela, ovos, palmito, pimentão, ervilha, presunto e cebola"},
		{ID: 15, Name: "Alho e óleo", Size: catalog.SizeSmall, Price: 26.50, Ingredients: "Mussarela, alho e queijo parmesão"},
		{ID: 16, Name: "Palmito", Size: catalog.SizeMedium, Price: 32.99, Ingredients: "Mussarela, palmito e orégano"},
		{ID: 17, Name: "Camarão", Size: catalog.SizeLarge, Price: 42.50, Ingredients: "Camarão, molho de tomate, mussarela e catupiry"},
		{ID: 18, Name: "Toscana", Size: catalog.SizeSmall, Price: 33.99, Ingredients: "Linguiça calabresa bacon e catupiry"},
		{ID: 19, Name: "Mineira", Size: catalog.SizeMedium, Price: 29.50, Ingredients: "Mussarela, catupiry e milho verde"},
		{ID: 20, Name: "Pepperoni", Size: catalog.SizeLarge, Price: 34.99, Ingredients: "Mussarela, pepperoni e cebola"},
		{ID: 21, Name: "Bacon", Size: catalog.SizeSmall, Price: 31.50, Ingredients: "Mussarela coberta com bacon e orégano"},
		{ID: 22, Name: "Mista", Size: catalog.SizeMedium, Price: 28.99, Ingredients: "Mussarela, presunto e orégano"},
		{ID: 23, Name: "Califórnia", Size: catalog.SizeLarge, Price: 36.50, Ingredients: "Mussarela, presunto, salada de frutas e orégano"},
		{ID: 24, Name: "Vegetariana", Size: catalog.SizeSmall, Price: 33.99, Ingredients: "Mussarela, pimentão, cebola, azeitona, ervilha, tomate, palmito, milho e orégano"},
		{ID: 25, Name: "Frango", Size: catalog.SizeMedium, Price: 29.50, Ingredients: "Molho de tomate, mussarela e frango"},
		{ID: 26, Name: "Frango com Catupiry", Size: catalog.SizeLarge, Price: 35.99, Ingredients: "Molho de tomate, mussarela, frango e catupiry"},
		{ID: 27, Name: "Bolonhesa", Size: catalog.SizeSmall, Price: 32.50, Ingredients: "Mussarela, molho a bolonhesa e orégano"},
		{ID: 28, Name: "Rúcula com Tomate Seco", Size: catalog.SizeMedium, Price: 36.99, Ingredients: "Mussarela, rúcula, tomate seco e orégano"},
		{ID: 29, Name: "Champignon", Size: catalog.SizeLarge, Price: 34.50, Ingredients: "Mussarela, champignon e orégano"},
		{ID: 30, Name: "Espanhola", Size: catalog.SizeSmall, Price: 30.99, Ingredients: "Presunto, mussarela, calabresa e cebola"},
		{ID: 31, Name: "Berinjela", Size: catalog.SizeMedium, Price: 32.50, Ingredients: "Berinjela, cebola, parmesão, mussarela e azeitona preta"},
		{ID: 32, Name: "Brasileira", Size: catalog.SizeLarge, Price: 35.99, Ingredients: "Ervilha, milho, palmito, tomate, mussarela e manjericão"},
		{ID: 33, Name: "Aliche", Size: catalog.SizeSmall, Price: 33.50, Ingredients: "Mussarela, aliche e tomates"},
		{ID: 34, Name: "Quatro queijos", Size: catalog.SizeMedium, Price: 37.99, Ingredients: "Mussarela, provolone, parmesão e catupiry"},
		{ID: 35, Name: "Havaiana", Size: catalog.SizeLarge, Price: 34.50, Ingredients: "Mussarela, lombo e abacaxi"},
		{ID: 36, Name: "Italiana", Size: catalog.SizeSmall, Price: 32.99, Ingredients: "Mussarela, parmesão, salame italiano e tomates"},
		{ID: 37, Name: "Parmegiana", Size: catalog.SizeMedium, Price: 31.50, Ingredients: "Presunto, mussarela, molho parmegiana"},
		{ID: 38, Name: "Tropical", Size: catalog.SizeLarge, Price: 38.99, Ingredients: "Mussarela, frango, milho, ervilha, ovos e catupiry"},
		{ID: 39, Name: "Canadense", Size: catalog.SizeSmall, Price: 39.50, Ingredients: "Mussarela, lombo, champignon, palmito e catupiry"},
		{ID: 40, Name: "Strogonoff", Size: catalog.SizeMedium, Price: 40.99, Ingredients: "Mussarela, champignon, strogonoff de frango e batata palha"},
		{ID: 41, Name: "Bauru", Size: catalog.SizeLarge, Price: 31.50, Ingredients: "Presunto, mussarela, tomate, orégano e azeitonas"},
		{ID: 42, Name: "Carne Seca", Size: catalog.SizeSmall, Price: 41.99, Ingredients: "Carne seca, mussarela, cebola, parmesão e orégano"},
		{ID: 43, Name: "Gorgonzola", Size: catalog.SizeMedium, Price: 38.50, Ingredients: "Gorgonzola, tomate, orégano e azeitonas"},
	}
}
